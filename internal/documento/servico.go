package documento

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/arquivos"
	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/erros"
	"github.com/KromaEnergia/api-documentos/internal/notificacao"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/KromaEnergia/api-documentos/internal/rateio"
	"go.uber.org/zap"
)

// Notificador recebe os eventos de encerramento do fluxo.
type Notificador interface {
	Enviar(ctx context.Context, ev notificacao.Evento) error
}

// Servico orquestra o motor sobre o snapshot do documento. Cada ação
// mutável é uma ida e volta: busca o snapshot, valida localmente, emite a
// intenção ao store e devolve o snapshot oficial. Nunca encadeia duas
// mutações locais sobre o mesmo snapshot.
type Servico struct {
	store       Store
	arquivos    arquivos.Storage
	notificador Notificador
	log         *zap.Logger
	agora       func() time.Time
	tolerancia  int64
	limites     parcelamento.Limites
}

// Opcao configura o Servico.
type Opcao func(*Servico)

func ComArquivos(st arquivos.Storage) Opcao {
	return func(s *Servico) { s.arquivos = st }
}

func ComNotificador(n Notificador) Opcao {
	return func(s *Servico) { s.notificador = n }
}

func ComLogger(l *zap.Logger) Opcao {
	return func(s *Servico) {
		if l != nil {
			s.log = l
		}
	}
}

// ComRelogio troca a fonte de "agora" (testes).
func ComRelogio(f func() time.Time) Opcao {
	return func(s *Servico) { s.agora = f }
}

func ComToleranciaRateio(t int64) Opcao {
	return func(s *Servico) { s.tolerancia = t }
}

func ComLimitesParcelamento(l parcelamento.Limites) Opcao {
	return func(s *Servico) { s.limites = l }
}

func NovoServico(store Store, opcoes ...Opcao) *Servico {
	s := &Servico{
		store:      store,
		log:        zap.NewNop(),
		agora:      time.Now,
		tolerancia: rateio.Tolerancia,
		limites:    parcelamento.LimitesPadrao,
	}
	for _, o := range opcoes {
		o(s)
	}
	return s
}

/* ============================== Consultas ============================== */

// Buscar devolve o snapshot atual com o resumo.
func (s *Servico) Buscar(ctx context.Context, id string) (*Visao, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.visao(doc), nil
}

// Relacao classifica o usuário frente ao fluxo de assinatura.
func (s *Servico) Relacao(ctx context.Context, id, usuarioID string) (*RelacaoUsuario, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RelacaoUsuario{
		DocumentoID: doc.ID,
		UsuarioID:   usuarioID,
		Relacao:     assinatura.RelacaoDe(doc.Signatarios, usuarioID),
		Ativo:       assinatura.Ativo(doc.Signatarios),
	}, nil
}

// Simular diz o que aconteceria se o usuário executasse a ação agora.
func (s *Servico) Simular(ctx context.Context, id, usuarioID string, acao assinatura.Acao) (*assinatura.Simulacao, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	sim := assinatura.Simular(doc.Signatarios, usuarioID, acao)
	if st := doc.StatusAtual(); st == assinatura.DocumentoRascunho || st == assinatura.DocumentoCancelado {
		sim.Permitido = false
		sim.Motivo = erros.ErrDocumentoEncerrado.Codigo
		sim.StatusAtual = st
		sim.StatusResultante = st
	}
	return &sim, nil
}

/* ============================== Submissão ============================== */

// Submeter cria o documento a partir do pedido. Fora do modo rascunho,
// exige ordem de signatários válida, soma exata das parcelas e rateio
// dentro da tolerância.
func (s *Servico) Submeter(ctx context.Context, usuarioID string, req SubmissaoDocumento) (*Visao, error) {
	agora := s.agora()
	doc, err := s.montar(usuarioID, req, agora)
	if err != nil {
		return nil, err
	}
	if req.Rascunho {
		doc.Status = assinatura.DocumentoRascunho
	} else {
		if err := s.validarEnvio(doc); err != nil {
			return nil, err
		}
		doc.Status = assinatura.DerivarStatus(doc.Signatarios)
	}

	criado, err := s.store.Criar(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.log.Info("documento submetido",
		zap.String("documento_id", criado.ID),
		zap.String("usuario_id", usuarioID),
		zap.String("status", string(criado.Status)))
	return s.visao(criado), nil
}

// Enviar tira o documento do rascunho, aplicando os mesmos gates da submissão.
func (s *Servico) Enviar(ctx context.Context, id string) (*Visao, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != assinatura.DocumentoRascunho {
		return nil, erros.Novo(erros.ErrDocumentoEncerrado, "documento não está em rascunho").
			Com("status", string(doc.StatusAtual()))
	}
	if err := s.validarEnvio(doc); err != nil {
		return nil, err
	}
	status := assinatura.DerivarStatus(doc.Signatarios)
	return s.atualizar(ctx, doc, Patch{Status: &status})
}

// Cancelar encerra um documento que ainda não concluiu o fluxo.
func (s *Servico) Cancelar(ctx context.Context, id, usuarioID string) (*Visao, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	switch st := doc.StatusAtual(); st {
	case assinatura.DocumentoConcluido, assinatura.DocumentoRejeitado, assinatura.DocumentoCancelado:
		return nil, erros.Novo(erros.ErrDocumentoEncerrado, "documento já encerrado").Com("status", string(st))
	}
	status := assinatura.DocumentoCancelado
	v, err := s.atualizar(ctx, doc, Patch{Status: &status})
	if err != nil {
		return nil, err
	}
	s.log.Info("documento cancelado", zap.String("documento_id", id), zap.String("usuario_id", usuarioID))
	return v, nil
}

/* ============================== Assinatura ============================== */

// Assinar registra a assinatura do usuário, se for a vez dele.
func (s *Servico) Assinar(ctx context.Context, id, usuarioID string) (*Visao, error) {
	return s.agir(ctx, id, usuarioID, assinatura.AcaoAssinar, "")
}

// Rejeitar registra a rejeição do usuário, se for a vez dele.
func (s *Servico) Rejeitar(ctx context.Context, id, usuarioID, motivo string) (*Visao, error) {
	return s.agir(ctx, id, usuarioID, assinatura.AcaoRejeitar, strings.TrimSpace(motivo))
}

func (s *Servico) agir(ctx context.Context, id, usuarioID string, acao assinatura.Acao, motivo string) (*Visao, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if st := doc.StatusAtual(); st == assinatura.DocumentoRascunho || st == assinatura.DocumentoCancelado {
		return nil, erros.Novo(erros.ErrDocumentoEncerrado, "documento não aceita assinaturas").
			Com("status", string(st))
	}

	agora := s.agora()
	// validação local; o resultado só serve para conferir a regra de vez
	if _, err := assinatura.Aplicar(doc.Signatarios, usuarioID, acao, motivo, agora); err != nil {
		s.log.Info("ação de assinatura recusada",
			zap.String("documento_id", id),
			zap.String("usuario_id", usuarioID),
			zap.String("acao", string(acao)),
			zap.Error(err))
		return nil, err
	}
	ativo := assinatura.Ativo(doc.Signatarios)

	novo, err := s.store.AplicarAssinatura(ctx, IntencaoAssinatura{
		DocumentoID:  doc.ID,
		Acao:         acao,
		SignatarioID: ativo.ID,
		UsuarioID:    usuarioID,
		Motivo:       motivo,
		Em:           agora,
	})
	if err != nil {
		return nil, err
	}
	if err := novo.Validar(); err != nil {
		return nil, err
	}

	s.log.Info("ação de assinatura registrada",
		zap.String("documento_id", id),
		zap.String("usuario_id", usuarioID),
		zap.String("acao", string(acao)),
		zap.String("status", string(novo.StatusAtual())))
	s.notificarEncerramento(ctx, novo, agora)
	return s.visao(novo), nil
}

func (s *Servico) notificarEncerramento(ctx context.Context, doc *Documento, agora time.Time) {
	if s.notificador == nil {
		return
	}
	var ev notificacao.Evento
	switch doc.StatusAtual() {
	case assinatura.DocumentoConcluido:
		ev = notificacao.Evento{Tipo: "documento.concluido", Mensagem: "Documento assinado por todos os signatários"}
	case assinatura.DocumentoRejeitado:
		ev = notificacao.Evento{Tipo: "documento.rejeitado", Mensagem: "Documento rejeitado por um signatário"}
	default:
		return
	}
	ev.DocumentoID = doc.ID
	ev.Status = string(doc.StatusAtual())
	ev.Em = agora.UTC()
	if err := s.notificador.Enviar(ctx, ev); err != nil {
		s.log.Warn("falha ao notificar encerramento", zap.String("documento_id", doc.ID), zap.Error(err))
	}
}

/* ============================== Parcelas ============================== */

// PagarParcela registra o pagamento (transição única false → true).
func (s *Servico) PagarParcela(ctx context.Context, id, parcelaID string, pg PagamentoParcela) (*Visao, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.aceitaPagamento(doc); err != nil {
		return nil, err
	}

	var parcela *parcelamento.Parcela
	for i := range doc.Parcelas {
		if doc.Parcelas[i].ID == parcelaID {
			parcela = &doc.Parcelas[i]
		}
	}
	if parcela == nil {
		return nil, erros.Novo(erros.ErrParcelaNaoEncontrada, "parcela %s não encontrada", parcelaID).
			Com("parcelaId", parcelaID)
	}
	if parcela.Paga {
		return nil, erros.Novo(erros.ErrParcelaJaPaga, "parcela %d já foi paga", parcela.Numero).
			Com("parcelaId", parcelaID)
	}

	data := pg.DataPagamento
	if data.IsZero() {
		data = s.agora()
	}
	novo, err := s.store.RegistrarPagamento(ctx, IntencaoPagamento{
		DocumentoID:   doc.ID,
		ParcelaID:     parcelaID,
		DataPagamento: data.UTC(),
		ComprovanteID: strings.TrimSpace(pg.ComprovanteID),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("parcela paga",
		zap.String("documento_id", id),
		zap.String("parcela_id", parcelaID),
		zap.Int64("valor", parcela.Valor))
	return s.visao(novo), nil
}

// RecalcularParcelas refaz só os valores, mantendo vencimentos.
func (s *Servico) RecalcularParcelas(ctx context.Context, id string) (*Visao, error) {
	doc, err := s.editavel(ctx, id)
	if err != nil {
		return nil, err
	}
	parcelas, err := parcelamento.RecalcularValores(doc.Parcelas, *doc.Total)
	if err != nil {
		return nil, err
	}
	return s.atualizar(ctx, doc, Patch{Parcelas: &parcelas})
}

// RegerarParcelas refaz o cronograma inteiro, preservando vencimentos
// editados manualmente nos números que continuarem existindo.
func (s *Servico) RegerarParcelas(ctx context.Context, id string, auto ParcelamentoAutomatico) (*Visao, error) {
	doc, err := s.editavel(ctx, id)
	if err != nil {
		return nil, err
	}
	inicio := auto.Inicio
	if inicio.IsZero() {
		inicio = s.agora()
	}
	if err := s.limites.Validar(auto.Quantidade, auto.Cadencia); err != nil {
		return nil, err
	}
	parcelas, err := parcelamento.Regerar(doc.Parcelas, *doc.Total, auto.Quantidade, auto.Cadencia, inicio)
	if err != nil {
		return nil, err
	}
	return s.atualizar(ctx, doc, Patch{Parcelas: &parcelas})
}

// EditarVencimento altera manualmente a data de uma parcela.
func (s *Servico) EditarVencimento(ctx context.Context, id string, numero int, data time.Time) (*Visao, error) {
	doc, err := s.editavel(ctx, id)
	if err != nil {
		return nil, err
	}
	parcelas, err := parcelamento.EditarVencimento(doc.Parcelas, numero, data)
	if err != nil {
		return nil, err
	}
	return s.atualizar(ctx, doc, Patch{Parcelas: &parcelas})
}

/* ============================== Rateio ============================== */

// AdicionarRateio inclui uma entrada; nunca deixa a soma passar do total.
func (s *Servico) AdicionarRateio(ctx context.Context, id string, in NovoRateio) (*Visao, error) {
	doc, err := s.editavel(ctx, id)
	if err != nil {
		return nil, err
	}
	rateios, err := rateio.Adicionar(doc.Rateios, *doc.Total, rateio.Rateio{
		Filial:      strings.TrimSpace(in.Filial),
		CentroCusto: strings.TrimSpace(in.CentroCusto),
		Valor:       in.Valor,
	})
	if err != nil {
		return nil, err
	}
	return s.atualizar(ctx, doc, Patch{Rateios: &rateios})
}

// EditarRateio troca o valor de uma entrada.
func (s *Servico) EditarRateio(ctx context.Context, id, rateioID string, valor int64) (*Visao, error) {
	doc, err := s.editavel(ctx, id)
	if err != nil {
		return nil, err
	}
	rateios, err := rateio.EditarValor(doc.Rateios, *doc.Total, rateioID, valor)
	if err != nil {
		return nil, err
	}
	return s.atualizar(ctx, doc, Patch{Rateios: &rateios})
}

// RemoverRateio retira uma entrada sem mexer nas demais.
func (s *Servico) RemoverRateio(ctx context.Context, id, rateioID string) (*Visao, error) {
	doc, err := s.editavel(ctx, id)
	if err != nil {
		return nil, err
	}
	rateios, err := rateio.Remover(doc.Rateios, rateioID)
	if err != nil {
		return nil, err
	}
	return s.atualizar(ctx, doc, Patch{Rateios: &rateios})
}

/* ============================== Arquivos ============================== */

// SolicitarUploadComprovante delega ao armazenamento a URL de upload.
func (s *Servico) SolicitarUploadComprovante(ctx context.Context, nomeArquivo string) (url, chave string, err error) {
	if s.arquivos == nil {
		return "", "", errors.New("armazenamento de arquivos não configurado")
	}
	return s.arquivos.GerarURLUpload(ctx, nomeArquivo)
}

/* ============================== Utilidades ============================== */

func (s *Servico) carregar(ctx context.Context, id string) (*Documento, error) {
	doc, err := s.store.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Normalizar()
	if err := doc.Validar(); err != nil {
		s.log.Error("snapshot inválido", zap.String("documento_id", id), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

// editavel carrega um documento cujas parcelas e rateio ainda podem mudar.
func (s *Servico) editavel(ctx context.Context, id string) (*Documento, error) {
	doc, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Encerrado() {
		return nil, erros.Novo(erros.ErrDocumentoEncerrado, "documento encerrado não pode ser alterado").
			Com("status", string(doc.StatusAtual()))
	}
	if doc.Total == nil {
		return nil, erros.Novo(erros.ErrTotalAusente, "documento sem total classificado").Com("documentoId", id)
	}
	return doc, nil
}

func (s *Servico) aceitaPagamento(doc *Documento) error {
	switch st := doc.StatusAtual(); st {
	case assinatura.DocumentoRascunho, assinatura.DocumentoRejeitado, assinatura.DocumentoCancelado:
		return erros.Novo(erros.ErrDocumentoEncerrado, "documento não aceita pagamentos").Com("status", string(st))
	}
	return nil
}

func (s *Servico) atualizar(ctx context.Context, doc *Documento, patch Patch) (*Visao, error) {
	patch.Versao = doc.Versao
	novo, err := s.store.Atualizar(ctx, doc.ID, patch)
	if err != nil {
		return nil, err
	}
	return s.visao(novo), nil
}

func (s *Servico) visao(doc *Documento) *Visao {
	doc.Normalizar()
	return &Visao{Documento: doc, Resumo: Resumir(doc, s.agora())}
}

func (s *Servico) validarEnvio(doc *Documento) error {
	if err := assinatura.ValidarOrdem(doc.Signatarios); err != nil {
		return err
	}
	if doc.Total == nil {
		if len(doc.Parcelas) > 0 || len(doc.Rateios) > 0 {
			return erros.Novo(erros.ErrTotalAusente, "parcelas e rateio exigem o total do documento")
		}
		return nil
	}
	if len(doc.Parcelas) > 0 {
		if err := parcelamento.ValidarSoma(doc.Parcelas, *doc.Total); err != nil {
			return err
		}
	}
	return rateio.ValidarSubmissao(doc.Rateios, *doc.Total, s.tolerancia)
}

// montar converte o pedido em documento, sem gates de consistência.
func (s *Servico) montar(usuarioID string, req SubmissaoDocumento, agora time.Time) (*Documento, error) {
	if req.Total != nil && *req.Total < 0 {
		return nil, erros.Novo(erros.ErrValorNegativo, "total não pode ser negativo").Com("total", *req.Total)
	}
	doc := &Documento{
		Tipo:      strings.TrimSpace(req.Tipo),
		Descricao: strings.TrimSpace(req.Descricao),
		Total:     req.Total,
		ArquivoID: strings.TrimSpace(req.ArquivoID),
		CriadoPor: usuarioID,
		Versao:    1,
	}

	for _, ns := range req.Signatarios {
		doc.Signatarios = append(doc.Signatarios, assinatura.Signatario{
			UsuarioID: strings.TrimSpace(ns.UsuarioID),
			Ordem:     ns.Ordem,
			Status:    assinatura.StatusPendente,
		})
	}
	if len(doc.Signatarios) > 0 {
		if err := assinatura.ValidarOrdem(doc.Signatarios); err != nil {
			return nil, err
		}
		doc.Signatarios = assinatura.Ordenar(doc.Signatarios)
	}

	temParcelas := len(req.Parcelas) > 0 || req.Parcelamento != nil
	if (temParcelas || len(req.Rateios) > 0) && req.Total == nil {
		return nil, erros.Novo(erros.ErrTotalAusente, "parcelas e rateio exigem o total do documento")
	}

	switch {
	case len(req.Parcelas) > s.limites.MaxParcelas:
		return nil, erros.Novo(erros.ErrQuantidadeInvalida, "quantidade de parcelas acima do limite").
			Com("quantidade", len(req.Parcelas)).
			Com("limite", s.limites.MaxParcelas)
	case len(req.Parcelas) > 0:
		for i, np := range req.Parcelas {
			if np.Valor < 0 {
				return nil, erros.Novo(erros.ErrValorNegativo, "parcela %d com valor negativo", i+1).
					Com("numero", i+1)
			}
			doc.Parcelas = append(doc.Parcelas, parcelamento.Parcela{
				Numero:             i + 1,
				Valor:              np.Valor,
				DataVencimento:     parcelamento.Dia(np.DataVencimento),
				EditadaManualmente: true,
			})
		}
	case req.Parcelamento != nil:
		inicio := req.Parcelamento.Inicio
		if inicio.IsZero() {
			inicio = agora
		}
		if err := s.limites.Validar(req.Parcelamento.Quantidade, req.Parcelamento.Cadencia); err != nil {
			return nil, err
		}
		parcelas, err := parcelamento.Dividir(*req.Total, req.Parcelamento.Quantidade, req.Parcelamento.Cadencia, inicio)
		if err != nil {
			return nil, err
		}
		doc.Parcelas = parcelas
	}

	for _, nr := range req.Rateios {
		rateios, err := rateio.Adicionar(doc.Rateios, *req.Total, rateio.Rateio{
			Filial:      strings.TrimSpace(nr.Filial),
			CentroCusto: strings.TrimSpace(nr.CentroCusto),
			Valor:       nr.Valor,
		})
		if err != nil {
			return nil, err
		}
		doc.Rateios = rateios
	}
	return doc, nil
}
