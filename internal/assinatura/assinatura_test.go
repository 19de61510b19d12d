package assinatura

import (
	"fmt"
	"testing"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/erros"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agora = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func sig(ordem int, usuario string, status Status) Signatario {
	return Signatario{
		ID:        fmt.Sprintf("s%d", ordem),
		UsuarioID: usuario,
		Ordem:     ordem,
		Status:    status,
	}
}

func quatro() []Signatario {
	return []Signatario{
		sig(1, "u1", StatusPendente),
		sig(2, "u2", StatusPendente),
		sig(3, "u3", StatusPendente),
		sig(4, "u4", StatusPendente),
	}
}

func TestAtivoUsaOrdemNaoPosicao(t *testing.T) {
	lista := []Signatario{
		sig(30, "c", StatusPendente),
		sig(5, "a", StatusAssinado),
		sig(12, "b", StatusPendente),
	}
	ativo := Ativo(lista)
	require.NotNil(t, ativo)
	assert.Equal(t, 12, ativo.Ordem)

	for _, s := range lista {
		if s.Status == StatusPendente {
			assert.LessOrEqual(t, ativo.Ordem, s.Ordem)
		}
	}
}

func TestAtivoSemPendentes(t *testing.T) {
	assert.Nil(t, Ativo(nil))
	assert.Nil(t, Ativo([]Signatario{sig(1, "a", StatusAssinado), sig(2, "b", StatusRejeitado)}))
}

func TestAtivoDevolveCopia(t *testing.T) {
	lista := quatro()
	ativo := Ativo(lista)
	ativo.Status = StatusAssinado
	assert.Equal(t, StatusPendente, lista[0].Status)
}

func TestRelacaoDe(t *testing.T) {
	lista := []Signatario{
		sig(1, "x", StatusAssinado),
		sig(2, "A", StatusPendente),
		sig(3, "B", StatusPendente),
	}
	assert.Equal(t, PodeAssinar, RelacaoDe(lista, "A"))
	assert.Equal(t, AguardandoVez, RelacaoDe(lista, "B"))
	assert.Equal(t, JaAssinou, RelacaoDe(lista, "x"))
	assert.Equal(t, NaoSignatario, RelacaoDe(lista, "ninguem"))
	assert.Equal(t, NaoSignatario, RelacaoDe(lista, ""))

	lista[1].Status = StatusRejeitado
	assert.Equal(t, Rejeitou, RelacaoDe(lista, "A"))
	assert.Equal(t, PodeAssinar, RelacaoDe(lista, "B"))
}

func TestRelacaoDePura(t *testing.T) {
	lista := quatro()
	for i := 0; i < 3; i++ {
		assert.Equal(t, PodeAssinar, RelacaoDe(lista, "u1"))
		assert.Equal(t, AguardandoVez, RelacaoDe(lista, "u3"))
	}
}

func TestDerivarStatus(t *testing.T) {
	cases := []struct {
		nome     string
		lista    []Signatario
		esperado StatusDocumento
	}{
		{"vazia", nil, DocumentoPendente},
		{"todos pendentes", quatro(), DocumentoPendente},
		{"um assinado", []Signatario{sig(1, "a", StatusAssinado), sig(2, "b", StatusPendente)}, DocumentoEmAndamento},
		{"todos assinados", []Signatario{sig(1, "a", StatusAssinado), sig(2, "b", StatusAssinado)}, DocumentoConcluido},
		{"rejeitado vence", []Signatario{sig(1, "a", StatusAssinado), sig(2, "b", StatusRejeitado), sig(3, "c", StatusPendente)}, DocumentoRejeitado},
		{"rejeitado com demais assinados", []Signatario{sig(1, "a", StatusAssinado), sig(2, "b", StatusAssinado), sig(3, "c", StatusRejeitado)}, DocumentoRejeitado},
	}
	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			primeiro := DerivarStatus(tc.lista)
			assert.Equal(t, tc.esperado, primeiro)
			assert.Equal(t, primeiro, DerivarStatus(tc.lista))
		})
	}
}

func TestAssinarSoAlteraOProprioRegistro(t *testing.T) {
	lista := quatro()
	out, err := Assinar(lista, "u1", agora)
	require.NoError(t, err)

	assert.Equal(t, StatusAssinado, out[0].Status)
	require.NotNil(t, out[0].AssinadoEm)
	assert.Equal(t, agora, *out[0].AssinadoEm)
	for i := 1; i < 4; i++ {
		assert.Equal(t, lista[i], out[i])
	}
	assert.Equal(t, StatusPendente, lista[0].Status, "entrada não pode mudar")
}

func TestAssinarForaDeVez(t *testing.T) {
	lista := quatro()
	_, err := Assinar(lista, "u3", agora)
	require.ErrorIs(t, err, erros.ErrForaDeVez)
	e, _ := erros.Como(err)
	assert.Equal(t, string(AguardandoVez), e.Detalhes["relacao"])
	assert.Equal(t, 1, e.Detalhes["ordemAtiva"])

	_, err = Assinar(lista, "estranho", agora)
	require.ErrorIs(t, err, erros.ErrForaDeVez)
	e, _ = erros.Como(err)
	assert.Equal(t, string(NaoSignatario), e.Detalhes["relacao"])
}

func TestCenarioQuatroSignatarios(t *testing.T) {
	lista := quatro()

	lista, err := Assinar(lista, "u1", agora)
	require.NoError(t, err)
	assert.Equal(t, DocumentoEmAndamento, DerivarStatus(lista))
	require.NotNil(t, Ativo(lista))
	assert.Equal(t, 2, Ativo(lista).Ordem)

	_, err = Assinar(lista, "u1", agora)
	require.ErrorIs(t, err, erros.ErrForaDeVez)
	e, _ := erros.Como(err)
	assert.Equal(t, string(JaAssinou), e.Detalhes["relacao"])

	for _, u := range []string{"u2", "u3", "u4"} {
		lista, err = Assinar(lista, u, agora)
		require.NoError(t, err, u)
	}
	assert.Equal(t, DocumentoConcluido, DerivarStatus(lista))
	assert.Nil(t, Ativo(lista))
}

func TestCenarioRejeicao(t *testing.T) {
	for quem := 1; quem <= 4; quem++ {
		t.Run(fmt.Sprintf("rejeita ordem %d", quem), func(t *testing.T) {
			lista := quatro()
			var err error
			for i := 1; i < quem; i++ {
				lista, err = Assinar(lista, fmt.Sprintf("u%d", i), agora)
				require.NoError(t, err)
			}
			lista, err = Rejeitar(lista, fmt.Sprintf("u%d", quem), "valor divergente", agora)
			require.NoError(t, err)

			assert.Equal(t, DocumentoRejeitado, DerivarStatus(lista))
			rejeitado := lista[quem-1]
			assert.Equal(t, StatusRejeitado, rejeitado.Status)
			assert.Equal(t, "valor divergente", rejeitado.MotivoRejeicao)
			require.NotNil(t, rejeitado.RejeitadoEm)

			if quem < 4 {
				_, err = Assinar(lista, fmt.Sprintf("u%d", quem+1), agora)
				assert.ErrorIs(t, err, erros.ErrDocumentoEncerrado)
			}
		})
	}
}

func TestStatusFinalImutavel(t *testing.T) {
	lista := []Signatario{sig(1, "a", StatusRejeitado), sig(2, "b", StatusAssinado)}
	_, err := Rejeitar(lista, "a", "de novo", agora)
	assert.ErrorIs(t, err, erros.ErrForaDeVez)
	_, err = Assinar(lista, "b", agora)
	assert.ErrorIs(t, err, erros.ErrForaDeVez)
	assert.True(t, StatusAssinado.Final())
	assert.False(t, StatusPendente.Final())
}

func TestSimular(t *testing.T) {
	lista := []Signatario{sig(1, "a", StatusPendente), sig(2, "b", StatusPendente)}

	sim := Simular(lista, "a", AcaoAssinar)
	assert.True(t, sim.Permitido)
	assert.Equal(t, DocumentoPendente, sim.StatusAtual)
	assert.Equal(t, DocumentoEmAndamento, sim.StatusResultante)
	require.NotNil(t, sim.ProximoAtivo)
	assert.Equal(t, "b", sim.ProximoAtivo.UsuarioID)

	sim = Simular(lista, "a", AcaoRejeitar)
	assert.True(t, sim.Permitido)
	assert.Equal(t, DocumentoRejeitado, sim.StatusResultante)
	assert.Nil(t, sim.ProximoAtivo)

	sim = Simular(lista, "b", AcaoAssinar)
	assert.False(t, sim.Permitido)
	assert.Equal(t, AguardandoVez, sim.Relacao)
	assert.Equal(t, erros.ErrForaDeVez.Codigo, sim.Motivo)
	assert.Equal(t, DocumentoPendente, sim.StatusResultante)

	assert.Equal(t, StatusPendente, lista[0].Status)
}

func TestValidarOrdem(t *testing.T) {
	assert.NoError(t, ValidarOrdem([]Signatario{sig(10, "a", StatusPendente), sig(3, "b", StatusPendente)}))

	invalidas := map[string][]Signatario{
		"vazia":            nil,
		"ordem zero":       {sig(0, "a", StatusPendente)},
		"ordem repetida":   {sig(1, "a", StatusPendente), sig(1, "b", StatusPendente)},
		"usuario repetido": {sig(1, "a", StatusPendente), sig(2, "a", StatusPendente)},
		"sem usuario":      {sig(1, " ", StatusPendente)},
	}
	for nome, lista := range invalidas {
		assert.ErrorIs(t, ValidarOrdem(lista), erros.ErrSignatariosInvalidos, nome)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "PENDING", " Pending "} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, StatusPendente, st)
	}
	_, err := ParseStatus("pendente")
	assert.Error(t, err)

	a, err := ParseAcao("reject")
	require.NoError(t, err)
	assert.Equal(t, AcaoRejeitar, a)
	_, err = ParseAcao("approve")
	assert.Error(t, err)
}

func TestOrdenar(t *testing.T) {
	out := Ordenar([]Signatario{sig(3, "c", StatusPendente), sig(1, "a", StatusPendente)})
	assert.Equal(t, 1, out[0].Ordem)
	assert.Equal(t, 3, out[1].Ordem)
}
