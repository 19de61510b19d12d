// Package erros define a taxonomia de erros de negócio do motor de documentos.
package erros

import (
	"errors"
	"fmt"
)

// Tipo classifica o erro para quem chama (e para o mapeamento HTTP).
type Tipo string

const (
	TipoValidacao     Tipo = "VALIDATION"
	TipoConsistencia  Tipo = "CONSISTENCY"
	TipoConflito      Tipo = "CONFLICT"
	TipoNaoEncontrado Tipo = "NOT_FOUND"
	TipoFatal         Tipo = "FATAL"
)

// Erro é um erro de negócio com código estável e detalhes suficientes
// para montar uma mensagem acionável (qual invariante, por quanto).
type Erro struct {
	Tipo     Tipo           `json:"tipo"`
	Codigo   string         `json:"codigo"`
	Mensagem string         `json:"mensagem"`
	Detalhes map[string]any `json:"detalhes,omitempty"`
}

func (e *Erro) Error() string {
	if e.Mensagem == "" {
		return e.Codigo
	}
	return e.Codigo + ": " + e.Mensagem
}

// Is compara pelo código, permitindo errors.Is(err, erros.ErrSaldoInsuficiente).
func (e *Erro) Is(target error) bool {
	t, ok := target.(*Erro)
	if !ok {
		return false
	}
	return t.Codigo == e.Codigo
}

// Com devolve uma cópia do erro com o detalhe adicionado.
func (e *Erro) Com(chave string, valor any) *Erro {
	det := make(map[string]any, len(e.Detalhes)+1)
	for k, v := range e.Detalhes {
		det[k] = v
	}
	det[chave] = valor
	return &Erro{Tipo: e.Tipo, Codigo: e.Codigo, Mensagem: e.Mensagem, Detalhes: det}
}

// Sentinelas. Use Novo* para criar instâncias com mensagem e detalhes.
var (
	ErrQuantidadeInvalida   = &Erro{Tipo: TipoValidacao, Codigo: "INVALID_INSTALLMENT_COUNT"}
	ErrCadenciaInvalida     = &Erro{Tipo: TipoValidacao, Codigo: "INVALID_CADENCE"}
	ErrValorNegativo        = &Erro{Tipo: TipoValidacao, Codigo: "NEGATIVE_AMOUNT"}
	ErrSaldoInsuficiente    = &Erro{Tipo: TipoValidacao, Codigo: "INSUFFICIENT_REMAINDER"}
	ErrForaDeVez            = &Erro{Tipo: TipoValidacao, Codigo: "OUT_OF_TURN"}
	ErrSignatariosInvalidos = &Erro{Tipo: TipoValidacao, Codigo: "INVALID_SIGNATORIES"}
	ErrRateioInvalido       = &Erro{Tipo: TipoValidacao, Codigo: "INVALID_ALLOCATION"}
	ErrParcelaJaPaga        = &Erro{Tipo: TipoValidacao, Codigo: "INSTALLMENT_ALREADY_PAID"}
	ErrDocumentoEncerrado   = &Erro{Tipo: TipoValidacao, Codigo: "DOCUMENT_CLOSED"}
	ErrPayloadInvalido      = &Erro{Tipo: TipoValidacao, Codigo: "INVALID_PAYLOAD"}

	ErrSomaParcelas = &Erro{Tipo: TipoConsistencia, Codigo: "INSTALLMENT_SUM_MISMATCH"}
	ErrSomaRateio   = &Erro{Tipo: TipoConsistencia, Codigo: "ALLOCATION_MISMATCH"}
	ErrTotalAusente = &Erro{Tipo: TipoConsistencia, Codigo: "TOTAL_REQUIRED"}

	ErrEstadoDesatualizado = &Erro{Tipo: TipoConflito, Codigo: "STALE_STATE"}

	ErrDocumentoNaoEncontrado = &Erro{Tipo: TipoNaoEncontrado, Codigo: "DOCUMENT_NOT_FOUND"}
	ErrParcelaNaoEncontrada   = &Erro{Tipo: TipoNaoEncontrado, Codigo: "INSTALLMENT_NOT_FOUND"}
	ErrRateioNaoEncontrado    = &Erro{Tipo: TipoNaoEncontrado, Codigo: "ALLOCATION_NOT_FOUND"}

	ErrSnapshotInvalido = &Erro{Tipo: TipoFatal, Codigo: "MALFORMED_SNAPSHOT"}
)

// Novo cria uma instância de uma sentinela com mensagem formatada.
func Novo(base *Erro, formato string, args ...any) *Erro {
	return &Erro{
		Tipo:     base.Tipo,
		Codigo:   base.Codigo,
		Mensagem: fmt.Sprintf(formato, args...),
	}
}

// Como extrai um *Erro da cadeia, se houver.
func Como(err error) (*Erro, bool) {
	var e *Erro
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// TipoDe devolve o tipo do erro de negócio, ou TipoFatal para erros desconhecidos.
func TipoDe(err error) Tipo {
	if e, ok := Como(err); ok {
		return e.Tipo
	}
	return TipoFatal
}
