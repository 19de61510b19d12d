package documento

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/erros"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/KromaEnergia/api-documentos/internal/rateio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func documentoGravado(t *testing.T, repo *Repository) *Documento {
	t.Helper()
	parcelas, err := parcelamento.Dividir(1000, 2, parcelamento.Mensal, agora)
	require.NoError(t, err)

	doc, err := repo.Criar(context.Background(), &Documento{
		Tipo:   "RECIBO",
		Total:  total(1000),
		Status: assinatura.DocumentoPendente,
		Signatarios: []assinatura.Signatario{
			{UsuarioID: "u2", Ordem: 20, Status: assinatura.StatusPendente},
			{UsuarioID: "u1", Ordem: 10, Status: assinatura.StatusPendente},
		},
		Parcelas: parcelas,
		Rateios:  []rateio.Rateio{{Filial: "SP", CentroCusto: "CC-1", Valor: 1000, Percentual: rateio.Percentual(1000, 1000)}},
	})
	require.NoError(t, err)
	return doc
}

func TestRepositoryCriarEBuscar(t *testing.T) {
	repo := NewRepository(novoBanco(t))
	doc := documentoGravado(t, repo)

	got, err := repo.Buscar(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Versao)
	require.Len(t, got.Signatarios, 2)
	assert.Equal(t, "u1", got.Signatarios[0].UsuarioID)
	assert.NotEmpty(t, got.Signatarios[0].ID)
	require.Len(t, got.Parcelas, 2)
	assert.Equal(t, int64(1000), parcelamento.Soma(got.Parcelas))
	require.Len(t, got.Rateios, 1)
	assert.Equal(t, "100", got.Rateios[0].Percentual.String())
}

func TestRepositoryBuscarInexistente(t *testing.T) {
	repo := NewRepository(novoBanco(t))
	_, err := repo.Buscar(context.Background(), "nao-existe")
	assert.True(t, errors.Is(err, erros.ErrDocumentoNaoEncontrado))
	assert.Equal(t, erros.TipoNaoEncontrado, erros.TipoDe(err))
}

func TestRepositoryAtualizarComVersaoAntiga(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(novoBanco(t))
	doc := documentoGravado(t, repo)

	vazio := []rateio.Rateio{}
	novo, err := repo.Atualizar(ctx, doc.ID, Patch{Versao: doc.Versao, Rateios: &vazio})
	require.NoError(t, err)
	assert.Equal(t, 2, novo.Versao)
	assert.Empty(t, novo.Rateios)

	_, err = repo.Atualizar(ctx, doc.ID, Patch{Versao: doc.Versao, Rateios: &doc.Rateios})
	assert.True(t, errors.Is(err, erros.ErrEstadoDesatualizado))
	assert.Equal(t, erros.TipoConflito, erros.TipoDe(err))

	// a transação recusada não deixa rastros
	atual, err := repo.Buscar(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, atual.Rateios)
	assert.Equal(t, 2, atual.Versao)
}

func TestRepositoryAtualizarInexistente(t *testing.T) {
	repo := NewRepository(novoBanco(t))
	st := assinatura.DocumentoCancelado
	_, err := repo.Atualizar(context.Background(), "nao-existe", Patch{Versao: 1, Status: &st})
	assert.True(t, errors.Is(err, erros.ErrDocumentoNaoEncontrado))
}

func TestRepositoryAplicarAssinatura(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(novoBanco(t))
	doc := documentoGravado(t, repo)
	ativo := doc.Signatarios[0]

	novo, err := repo.AplicarAssinatura(ctx, IntencaoAssinatura{
		DocumentoID:  doc.ID,
		Acao:         assinatura.AcaoAssinar,
		SignatarioID: ativo.ID,
		UsuarioID:    "u1",
		Em:           agora,
	})
	require.NoError(t, err)
	assert.Equal(t, assinatura.DocumentoEmAndamento, novo.Status)
	assert.Equal(t, assinatura.StatusAssinado, novo.Signatarios[0].Status)
	require.NotNil(t, novo.Signatarios[0].AssinadoEm)
	assert.Equal(t, 2, novo.Versao)

	// mesma intenção repetida: o signatário não é mais o ativo
	_, err = repo.AplicarAssinatura(ctx, IntencaoAssinatura{
		DocumentoID:  doc.ID,
		Acao:         assinatura.AcaoAssinar,
		SignatarioID: ativo.ID,
		UsuarioID:    "u1",
		Em:           agora,
	})
	assert.True(t, errors.Is(err, erros.ErrEstadoDesatualizado))
}

func TestRepositoryRejeicaoGravaMotivo(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(novoBanco(t))
	doc := documentoGravado(t, repo)

	novo, err := repo.AplicarAssinatura(ctx, IntencaoAssinatura{
		DocumentoID:  doc.ID,
		Acao:         assinatura.AcaoRejeitar,
		SignatarioID: doc.Signatarios[0].ID,
		UsuarioID:    "u1",
		Motivo:       "valor divergente",
		Em:           agora,
	})
	require.NoError(t, err)
	assert.Equal(t, assinatura.DocumentoRejeitado, novo.Status)
	assert.Equal(t, "valor divergente", novo.Signatarios[0].MotivoRejeicao)
	assert.Equal(t, assinatura.StatusPendente, novo.Signatarios[1].Status)
}

func TestRepositoryRegistrarPagamento(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(novoBanco(t))
	doc := documentoGravado(t, repo)
	parcela := doc.Parcelas[0]
	pagoEm := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)

	novo, err := repo.RegistrarPagamento(ctx, IntencaoPagamento{
		DocumentoID:   doc.ID,
		ParcelaID:     parcela.ID,
		DataPagamento: pagoEm,
		ComprovanteID: "comprovantes/abc/pix.pdf",
	})
	require.NoError(t, err)
	assert.True(t, novo.Parcelas[0].Paga)
	assert.Equal(t, "comprovantes/abc/pix.pdf", novo.Parcelas[0].ComprovanteID)
	require.NotNil(t, novo.Parcelas[0].DataPagamento)
	assert.True(t, pagoEm.Equal(*novo.Parcelas[0].DataPagamento))
	assert.False(t, novo.Parcelas[1].Paga)

	_, err = repo.RegistrarPagamento(ctx, IntencaoPagamento{DocumentoID: doc.ID, ParcelaID: parcela.ID, DataPagamento: pagoEm})
	assert.True(t, errors.Is(err, erros.ErrEstadoDesatualizado))

	_, err = repo.RegistrarPagamento(ctx, IntencaoPagamento{DocumentoID: doc.ID, ParcelaID: "outra", DataPagamento: pagoEm})
	assert.True(t, errors.Is(err, erros.ErrParcelaNaoEncontrada))
}
