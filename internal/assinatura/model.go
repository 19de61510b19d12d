// internal/assinatura/model.go
package assinatura

import (
	"fmt"
	"strings"
	"time"
)

// Status de um signatário. Valores canônicos, sempre em maiúsculas.
type Status string

const (
	StatusPendente  Status = "PENDING"
	StatusAssinado  Status = "SIGNED"
	StatusRejeitado Status = "REJECTED"
)

// ParseStatus normaliza a grafia recebida de fora ("pending", "Pending")
// para o valor canônico.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPendente:
		return StatusPendente, nil
	case StatusAssinado:
		return StatusAssinado, nil
	case StatusRejeitado:
		return StatusRejeitado, nil
	}
	return "", fmt.Errorf("status de signatário inválido: %q", s)
}

// Final indica que o status não admite mais transições.
func (s Status) Final() bool {
	return s == StatusAssinado || s == StatusRejeitado
}

// StatusDocumento é o status agregado do documento.
type StatusDocumento string

const (
	DocumentoRascunho    StatusDocumento = "DRAFT"
	DocumentoPendente    StatusDocumento = "PENDING"
	DocumentoEmAndamento StatusDocumento = "IN_PROGRESS"
	DocumentoConcluido   StatusDocumento = "COMPLETED"
	DocumentoRejeitado   StatusDocumento = "REJECTED"
	DocumentoCancelado   StatusDocumento = "CANCELLED"
)

// Relacao de um usuário com o fluxo de assinatura de um documento.
type Relacao string

const (
	NaoSignatario Relacao = "NOT_SIGNATORY"
	JaAssinou     Relacao = "ALREADY_SIGNED"
	Rejeitou      Relacao = "REJECTED"
	PodeAssinar   Relacao = "CAN_SIGN"
	AguardandoVez Relacao = "WAITING_TURN"
)

// Acao sobre a vez de um signatário.
type Acao string

const (
	AcaoAssinar  Acao = "SIGN"
	AcaoRejeitar Acao = "REJECT"
)

// ParseAcao aceita qualquer grafia de SIGN/REJECT.
func ParseAcao(s string) (Acao, error) {
	switch Acao(strings.ToUpper(strings.TrimSpace(s))) {
	case AcaoAssinar:
		return AcaoAssinar, nil
	case AcaoRejeitar:
		return AcaoRejeitar, nil
	}
	return "", fmt.Errorf("ação inválida: %q", s)
}

// Signatario é uma pessoa que precisa aprovar o documento, numa posição
// fixa da ordem de assinatura. UsuarioID é referência fraca.
type Signatario struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	DocumentoID    string     `gorm:"size:36;not null;index;uniqueIndex:idx_signatario_ordem" json:"documentoId"`
	UsuarioID      string     `gorm:"size:120;not null;index" json:"usuarioId"`
	Ordem          int        `gorm:"not null;uniqueIndex:idx_signatario_ordem" json:"ordem"`
	Status         Status     `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	AssinadoEm     *time.Time `json:"assinadoEm,omitempty"`
	RejeitadoEm    *time.Time `json:"rejeitadoEm,omitempty"`
	MotivoRejeicao string     `gorm:"size:500" json:"motivoRejeicao,omitempty"`
}
