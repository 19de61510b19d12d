// internal/documento/model.go
package documento

import (
	"time"

	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/erros"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/KromaEnergia/api-documentos/internal/rateio"
)

// Documento financeiro (nota, contrato, recibo…) em fluxo de aprovação.
// Total em centavos; nil enquanto o documento não foi classificado.
type Documento struct {
	ID           string                     `gorm:"primaryKey;size:36" json:"id"`
	Tipo         string                     `gorm:"size:50" json:"tipo"`
	Descricao    string                     `gorm:"size:255" json:"descricao"`
	Total        *int64                     `json:"total"`
	Status       assinatura.StatusDocumento `gorm:"size:20;not null;index" json:"status"`
	ArquivoID    string                     `gorm:"size:255" json:"arquivoId,omitempty"`
	CriadoPor    string                     `gorm:"size:120" json:"criadoPor,omitempty"`
	Versao       int                        `gorm:"not null;default:1" json:"versao"`
	Parcelas     []parcelamento.Parcela     `gorm:"foreignKey:DocumentoID" json:"parcelas"`
	Signatarios  []assinatura.Signatario    `gorm:"foreignKey:DocumentoID" json:"signatarios"`
	Rateios      []rateio.Rateio            `gorm:"foreignKey:DocumentoID" json:"rateios"`
	CriadoEm     time.Time                  `gorm:"autoCreateTime" json:"criadoEm"`
	AtualizadoEm time.Time                  `gorm:"autoUpdateTime" json:"atualizadoEm"`
}

// TotalOuZero devolve o total, ou zero se ainda não classificado.
func (d *Documento) TotalOuZero() int64 {
	if d.Total == nil {
		return 0
	}
	return *d.Total
}

// StatusAtual devolve o status vigente. Rascunho e cancelado são estados
// gravados; nos demais casos o status é sempre derivado dos signatários.
func (d *Documento) StatusAtual() assinatura.StatusDocumento {
	switch d.Status {
	case assinatura.DocumentoRascunho, assinatura.DocumentoCancelado:
		return d.Status
	}
	return assinatura.DerivarStatus(d.Signatarios)
}

// Encerrado indica que o documento não aceita mais alterações de fluxo.
func (d *Documento) Encerrado() bool {
	switch d.StatusAtual() {
	case assinatura.DocumentoRejeitado, assinatura.DocumentoCancelado:
		return true
	}
	return false
}

// Validar confere se o snapshot recebido do store é utilizável.
func (d *Documento) Validar() error {
	if d.ID == "" {
		return erros.Novo(erros.ErrSnapshotInvalido, "documento sem identificador")
	}
	if d.Total != nil && *d.Total < 0 {
		return erros.Novo(erros.ErrSnapshotInvalido, "total negativo").Com("documentoId", d.ID)
	}
	for _, s := range d.Signatarios {
		switch s.Status {
		case assinatura.StatusPendente, assinatura.StatusAssinado, assinatura.StatusRejeitado:
		default:
			return erros.Novo(erros.ErrSnapshotInvalido, "status de signatário inválido: %q", s.Status).
				Com("signatarioId", s.ID)
		}
	}
	return nil
}

// Normalizar converte grafias legadas de status ("pending") para o valor
// canônico. Só é chamado na borda, ao carregar snapshots.
func (d *Documento) Normalizar() {
	for i := range d.Signatarios {
		if st, err := assinatura.ParseStatus(string(d.Signatarios[i].Status)); err == nil {
			d.Signatarios[i].Status = st
		}
	}
	d.Signatarios = assinatura.Ordenar(d.Signatarios)
	d.Parcelas = parcelamento.Ordenar(d.Parcelas)
}
