// internal/documento/dto.go
package documento

import (
	"time"

	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
)

// SubmissaoDocumento é o pedido explícito de criação de um documento:
// tudo o que o fluxo de upload coletou, sem estado global.
type SubmissaoDocumento struct {
	Tipo      string `json:"tipo" validate:"max=50"`
	Descricao string `json:"descricao" validate:"max=255"`
	Total     *int64 `json:"total"`
	ArquivoID string `json:"arquivoId" validate:"max=255"`
	Rascunho  bool   `json:"rascunho"` // se true, grava como DRAFT sem os gates de consistência

	Signatarios []NovoSignatario `json:"signatarios" validate:"dive"`

	// Parcelamento automático; ignorado quando Parcelas vier preenchido.
	Parcelamento *ParcelamentoAutomatico `json:"parcelamento,omitempty"`

	// Parcelas informadas manualmente, na ordem em que serão numeradas.
	Parcelas []NovaParcela `json:"parcelas,omitempty"`

	Rateios []NovoRateio `json:"rateios,omitempty" validate:"dive"`
}

type NovoSignatario struct {
	UsuarioID string `json:"usuarioId" validate:"required,max=120"`
	Ordem     int    `json:"ordem"`
}

type ParcelamentoAutomatico struct {
	Quantidade int                   `json:"quantidade" validate:"gt=0"`
	Cadencia   parcelamento.Cadencia `json:"cadencia"`
	Inicio     time.Time             `json:"inicio"` // zero = data da submissão
}

type NovaParcela struct {
	Valor          int64     `json:"valor"`
	DataVencimento time.Time `json:"dataVencimento"`
}

type NovoRateio struct {
	Filial      string `json:"filial" validate:"required,max=120"`
	CentroCusto string `json:"centroCusto" validate:"required,max=120"`
	Valor       int64  `json:"valor"`
}

// PagamentoParcela são os dados do pagamento de uma parcela.
type PagamentoParcela struct {
	DataPagamento time.Time `json:"dataPagamento"` // zero = agora
	ComprovanteID string    `json:"comprovanteId" validate:"max=255"`
}

// Visao é o snapshot oficial do documento com o resumo recalculado.
type Visao struct {
	Documento *Documento `json:"documento"`
	Resumo    Resumo     `json:"resumo"`
}

// RelacaoUsuario responde "este usuário pode agir agora?".
type RelacaoUsuario struct {
	DocumentoID string                 `json:"documentoId"`
	UsuarioID   string                 `json:"usuarioId"`
	Relacao     assinatura.Relacao     `json:"relacao"`
	Ativo       *assinatura.Signatario `json:"ativo,omitempty"`
}
