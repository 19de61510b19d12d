package assinatura

import (
	"time"

	"github.com/KromaEnergia/api-documentos/internal/erros"
)

// DerivarStatus calcula o status do documento a partir dos signatários:
// qualquer rejeição → REJECTED; todos assinados → COMPLETED; algum assinado
// e algum pendente → IN_PROGRESS; senão PENDING. Lista vazia é PENDING.
func DerivarStatus(signatarios []Signatario) StatusDocumento {
	if len(signatarios) == 0 {
		return DocumentoPendente
	}
	var assinados int
	for _, s := range signatarios {
		switch s.Status {
		case StatusRejeitado:
			return DocumentoRejeitado
		case StatusAssinado:
			assinados++
		}
	}
	switch {
	case assinados == len(signatarios):
		return DocumentoConcluido
	case assinados > 0:
		return DocumentoEmAndamento
	default:
		return DocumentoPendente
	}
}

// Assinar registra a assinatura de usuarioID. Só o próprio registro muda;
// a lista recebida não é alterada.
func Assinar(signatarios []Signatario, usuarioID string, agora time.Time) ([]Signatario, error) {
	idx, err := vez(signatarios, usuarioID)
	if err != nil {
		return nil, err
	}
	out := copiar(signatarios)
	t := agora.UTC()
	out[idx].Status = StatusAssinado
	out[idx].AssinadoEm = &t
	return out, nil
}

// Rejeitar registra a rejeição de usuarioID, com motivo opcional.
// Segue a mesma regra de vez da assinatura.
func Rejeitar(signatarios []Signatario, usuarioID, motivo string, agora time.Time) ([]Signatario, error) {
	idx, err := vez(signatarios, usuarioID)
	if err != nil {
		return nil, err
	}
	out := copiar(signatarios)
	t := agora.UTC()
	out[idx].Status = StatusRejeitado
	out[idx].RejeitadoEm = &t
	out[idx].MotivoRejeicao = motivo
	return out, nil
}

// Aplicar executa acao para usuarioID.
func Aplicar(signatarios []Signatario, usuarioID string, acao Acao, motivo string, agora time.Time) ([]Signatario, error) {
	if acao == AcaoRejeitar {
		return Rejeitar(signatarios, usuarioID, motivo, agora)
	}
	return Assinar(signatarios, usuarioID, agora)
}

// Simulacao descreve o que aconteceria se o usuário agisse agora.
type Simulacao struct {
	Relacao          Relacao         `json:"relacao"`
	Permitido        bool            `json:"permitido"`
	Motivo           string          `json:"motivo,omitempty"`
	StatusAtual      StatusDocumento `json:"statusAtual"`
	StatusResultante StatusDocumento `json:"statusResultante"`
	ProximoAtivo     *Signatario     `json:"proximoAtivo,omitempty"`
}

// Simular responde "o que acontece se usuarioID executar acao", sem
// alterar nada.
func Simular(signatarios []Signatario, usuarioID string, acao Acao) Simulacao {
	atual := DerivarStatus(signatarios)
	sim := Simulacao{
		Relacao:          RelacaoDe(signatarios, usuarioID),
		StatusAtual:      atual,
		StatusResultante: atual,
		ProximoAtivo:     Ativo(signatarios),
	}

	// o instante é irrelevante para o status resultante
	depois, err := Aplicar(signatarios, usuarioID, acao, "", time.Time{})
	if err != nil {
		if e, ok := erros.Como(err); ok {
			sim.Motivo = e.Codigo
		}
		return sim
	}
	sim.Permitido = true
	sim.StatusResultante = DerivarStatus(depois)
	sim.ProximoAtivo = Ativo(depois)
	if sim.StatusResultante == DocumentoRejeitado {
		sim.ProximoAtivo = nil
	}
	return sim
}

// vez devolve o índice do signatário de usuarioID se for a vez dele.
func vez(signatarios []Signatario, usuarioID string) (int, error) {
	rel := RelacaoDe(signatarios, usuarioID)
	if rel != PodeAssinar {
		e := erros.Novo(erros.ErrForaDeVez, "usuário não pode agir agora: %s", rel).
			Com("relacao", string(rel))
		if ativo := Ativo(signatarios); ativo != nil {
			e = e.Com("ordemAtiva", ativo.Ordem)
		}
		return -1, e
	}
	if DerivarStatus(signatarios) == DocumentoRejeitado {
		return -1, erros.Novo(erros.ErrDocumentoEncerrado, "documento já foi rejeitado").
			Com("status", string(DocumentoRejeitado))
	}
	for i := range signatarios {
		if signatarios[i].UsuarioID == usuarioID {
			return i, nil
		}
	}
	return -1, erros.Novo(erros.ErrSnapshotInvalido, "signatário de %s sumiu da lista", usuarioID)
}

func copiar(signatarios []Signatario) []Signatario {
	out := make([]Signatario, len(signatarios))
	copy(out, signatarios)
	return out
}
