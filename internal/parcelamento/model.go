// internal/parcelamento/model.go
package parcelamento

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/erros"
)

// Parcela representa um pagamento agendado do total de um documento.
// Valores sempre em centavos.
type Parcela struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	DocumentoID        string     `gorm:"size:36;not null;index" json:"documentoId"`
	Numero             int        `gorm:"not null" json:"numero"`
	Valor              int64      `gorm:"not null;default:0" json:"valor"`
	DataVencimento     time.Time  `gorm:"not null" json:"dataVencimento"`
	EditadaManualmente bool       `gorm:"not null;default:false" json:"editadaManualmente"`
	Paga               bool       `gorm:"not null;default:false;index" json:"paga"`
	ComprovanteID      string     `gorm:"size:255" json:"comprovanteId,omitempty"`
	DataPagamento      *time.Time `json:"dataPagamento,omitempty"`
}

// Unidade da cadência de vencimentos.
type Unidade string

const (
	UnidadeDias  Unidade = "DIAS"
	UnidadeMeses Unidade = "MESES"
)

// Cadencia define o intervalo entre vencimentos consecutivos.
type Cadencia struct {
	Unidade   Unidade `json:"unidade"`
	Intervalo int     `json:"intervalo"`
}

// Mensal é a cadência padrão dos contratos (uma parcela por mês).
var Mensal = Cadencia{Unidade: UnidadeMeses, Intervalo: 1}

// Limites barra cronogramas grandes demais antes de qualquer alocação.
// Com os dois tetos, intervalo × número nunca estoura int.
type Limites struct {
	MaxParcelas  int
	MaxIntervalo int
}

// LimitesPadrao: 30 anos de parcelas mensais, intervalo de até um ano em dias.
var LimitesPadrao = Limites{MaxParcelas: 360, MaxIntervalo: 365}

// Validar confere quantidade e cadência contra os tetos. Valores não
// positivos ficam para Dividir e Cadencia.Validar recusarem.
func (l Limites) Validar(quantidade int, c Cadencia) error {
	if quantidade > l.MaxParcelas {
		return erros.Novo(erros.ErrQuantidadeInvalida, "quantidade de parcelas acima do limite").
			Com("quantidade", quantidade).
			Com("limite", l.MaxParcelas)
	}
	if c.Intervalo > l.MaxIntervalo {
		return erros.Novo(erros.ErrCadenciaInvalida, "intervalo da cadência acima do limite").
			Com("intervalo", c.Intervalo).
			Com("limite", l.MaxIntervalo)
	}
	return nil
}

func (c Cadencia) Validar() error {
	if c.Unidade != UnidadeDias && c.Unidade != UnidadeMeses {
		return erros.Novo(erros.ErrCadenciaInvalida, "unidade de cadência desconhecida: %q", c.Unidade)
	}
	if c.Intervalo <= 0 {
		return erros.Novo(erros.ErrCadenciaInvalida, "intervalo deve ser positivo").
			Com("intervalo", c.Intervalo)
	}
	return nil
}

// Vencimento devolve a data de vencimento da parcela de número n,
// contada a partir de inicio (inicio + intervalo × n).
func (c Cadencia) Vencimento(inicio time.Time, n int) time.Time {
	base := Dia(inicio)
	if c.Unidade == UnidadeMeses {
		return base.AddDate(0, c.Intervalo*n, 0)
	}
	return base.AddDate(0, 0, c.Intervalo*n)
}

func (c Cadencia) String() string {
	if c.Unidade == UnidadeMeses {
		return fmt.Sprintf("%dm", c.Intervalo)
	}
	return fmt.Sprintf("%dd", c.Intervalo)
}

// UnmarshalJSON aceita tanto {"unidade":"MESES","intervalo":1} quanto "1m".
func (c *Cadencia) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := ParseCadencia(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	type plain Cadencia
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = Cadencia(p)
	return nil
}

// ParseCadencia aceita "30d" (dias) ou "1m" (meses).
func ParseCadencia(s string) (Cadencia, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return Cadencia{}, erros.Novo(erros.ErrCadenciaInvalida, "cadência inválida: %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Cadencia{}, erros.Novo(erros.ErrCadenciaInvalida, "cadência inválida: %q", s)
	}

	var c Cadencia
	switch s[len(s)-1] {
	case 'd':
		c = Cadencia{Unidade: UnidadeDias, Intervalo: n}
	case 'm':
		c = Cadencia{Unidade: UnidadeMeses, Intervalo: n}
	default:
		return Cadencia{}, erros.Novo(erros.ErrCadenciaInvalida, "cadência inválida: %q", s)
	}
	return c, c.Validar()
}

// Dia normaliza t para a meia-noite UTC da mesma data de calendário.
func Dia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
