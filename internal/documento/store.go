package documento

import (
	"context"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/KromaEnergia/api-documentos/internal/rateio"
)

// IntencaoAssinatura é emitida depois da validação local de uma
// assinatura ou rejeição. O store aplica e devolve o snapshot oficial.
type IntencaoAssinatura struct {
	DocumentoID  string          `json:"documentId"`
	Acao         assinatura.Acao `json:"action"`
	SignatarioID string          `json:"signatarioId"`
	UsuarioID    string          `json:"usuarioId"`
	Motivo       string          `json:"reason,omitempty"`
	Em           time.Time       `json:"em"`
}

// IntencaoPagamento registra o pagamento de uma parcela. ComprovanteID é
// a referência opaca devolvida pelo armazenamento de arquivos.
type IntencaoPagamento struct {
	DocumentoID   string    `json:"documentId"`
	ParcelaID     string    `json:"installmentId"`
	DataPagamento time.Time `json:"paymentDate"`
	ComprovanteID string    `json:"proofFileId,omitempty"`
}

// Patch descreve uma alteração do documento. Campos nil não mudam.
// Versao é a versão do snapshot sobre o qual o patch foi calculado.
type Patch struct {
	Versao   int
	Status   *assinatura.StatusDocumento
	Parcelas *[]parcelamento.Parcela
	Rateios  *[]rateio.Rateio
}

// Store é o colaborador externo de persistência de documentos.
type Store interface {
	Criar(ctx context.Context, doc *Documento) (*Documento, error)
	Buscar(ctx context.Context, id string) (*Documento, error)
	Atualizar(ctx context.Context, id string, patch Patch) (*Documento, error)
	AplicarAssinatura(ctx context.Context, in IntencaoAssinatura) (*Documento, error)
	RegistrarPagamento(ctx context.Context, in IntencaoPagamento) (*Documento, error)
}
