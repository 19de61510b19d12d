// Package rateio distribui o valor de um documento entre filiais e centros
// de custo e reconcilia essa distribuição com o total do documento.
package rateio

import (
	"math"
	"strings"

	"github.com/KromaEnergia/api-documentos/internal/erros"
	"github.com/shopspring/decimal"
)

// Tolerancia padrão (centavos) aceita entre a soma do rateio e o total na submissão.
const Tolerancia int64 = 1

// Rateio é a parcela do valor do documento atribuída a um par filial/centro de custo.
type Rateio struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	DocumentoID string          `gorm:"size:36;not null;index" json:"documentoId"`
	Filial      string          `gorm:"size:120;not null" json:"filial"`
	CentroCusto string          `gorm:"size:120;not null" json:"centroCusto"`
	Valor       int64           `gorm:"not null" json:"valor"`
	Percentual  decimal.Decimal `gorm:"type:decimal(7,2);not null" json:"percentual"`
}

// Resumo é a projeção do rateio frente ao total do documento.
type Resumo struct {
	Distribuido           int64           `json:"distribuido"`
	Saldo                 int64           `json:"saldo"`
	PercentualDistribuido decimal.Decimal `json:"percentualDistribuido"`
}

var cem = decimal.NewFromInt(100)

// Percentual calcula valor/total × 100 com duas casas, arredondando
// metade para cima. Sempre relativo ao total do documento.
func Percentual(valor, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(valor).
		Mul(cem).
		Div(decimal.NewFromInt(total)).
		Round(2)
}

// Adicionar inclui entrada na lista. Falha com INSUFFICIENT_REMAINDER se a
// soma ultrapassar o total; a lista recebida nunca é alterada.
func Adicionar(lista []Rateio, total int64, entrada Rateio) ([]Rateio, error) {
	if err := validarEntrada(entrada); err != nil {
		return nil, err
	}
	if err := cabe(Soma(lista), entrada.Valor, total); err != nil {
		return nil, err
	}

	entrada.Percentual = Percentual(entrada.Valor, total)
	out := make([]Rateio, len(lista), len(lista)+1)
	copy(out, lista)
	return append(out, entrada), nil
}

// Remover retira o rateio id sem renormalizar os demais.
func Remover(lista []Rateio, id string) ([]Rateio, error) {
	idx := indice(lista, id)
	if idx < 0 {
		return nil, erros.Novo(erros.ErrRateioNaoEncontrado, "rateio %s não existe", id).Com("id", id)
	}
	out := make([]Rateio, 0, len(lista)-1)
	out = append(out, lista[:idx]...)
	return append(out, lista[idx+1:]...), nil
}

// EditarValor troca o valor do rateio id e recalcula apenas o percentual dele.
func EditarValor(lista []Rateio, total int64, id string, novoValor int64) ([]Rateio, error) {
	idx := indice(lista, id)
	if idx < 0 {
		return nil, erros.Novo(erros.ErrRateioNaoEncontrado, "rateio %s não existe", id).Com("id", id)
	}
	if novoValor < 0 {
		return nil, erros.Novo(erros.ErrValorNegativo, "valor do rateio não pode ser negativo").
			Com("valor", novoValor)
	}
	if err := cabe(Soma(lista)-lista[idx].Valor, novoValor, total); err != nil {
		return nil, err
	}

	out := make([]Rateio, len(lista))
	copy(out, lista)
	out[idx].Valor = novoValor
	out[idx].Percentual = Percentual(novoValor, total)
	return out, nil
}

// ValidarSubmissao é o gate de submissão: lista vazia dispensa o rateio;
// caso contrário |soma − total| deve ficar dentro de tolerancia.
func ValidarSubmissao(lista []Rateio, total, tolerancia int64) error {
	if len(lista) == 0 {
		return nil
	}
	for _, r := range lista {
		if err := validarEntrada(r); err != nil {
			return err
		}
	}
	soma := Soma(lista)
	delta := soma - total
	if delta > tolerancia || -delta > tolerancia {
		return erros.Novo(erros.ErrSomaRateio, "soma do rateio difere do total do documento").
			Com("distribuido", soma).
			Com("total", total).
			Com("delta", delta)
	}
	return nil
}

func Resumir(lista []Rateio, total int64) Resumo {
	soma := Soma(lista)
	return Resumo{
		Distribuido:           soma,
		Saldo:                 total - soma,
		PercentualDistribuido: Percentual(soma, total),
	}
}

// Soma satura em math.MaxInt64 em vez de dar a volta, de modo que uma
// lista absurda nunca parece caber no total.
func Soma(lista []Rateio) int64 {
	var s int64
	for _, r := range lista {
		if r.Valor > 0 && s > math.MaxInt64-r.Valor {
			return math.MaxInt64
		}
		s += r.Valor
	}
	return s
}

// cabe compara sem somar: distribuido e valor já são não negativos.
func cabe(distribuido, valor, total int64) error {
	if distribuido <= total && valor <= total-distribuido {
		return nil
	}
	saldo := total - distribuido
	return erros.Novo(erros.ErrSaldoInsuficiente, "valor excede o saldo a distribuir").
		Com("saldo", saldo).
		Com("valor", valor).
		Com("excedente", valor-saldo)
}

func validarEntrada(r Rateio) error {
	if strings.TrimSpace(r.Filial) == "" || strings.TrimSpace(r.CentroCusto) == "" {
		return erros.Novo(erros.ErrRateioInvalido, "filial e centro de custo são obrigatórios")
	}
	if r.Valor < 0 {
		return erros.Novo(erros.ErrValorNegativo, "valor do rateio não pode ser negativo").
			Com("valor", r.Valor)
	}
	return nil
}

func indice(lista []Rateio, id string) int {
	for i, r := range lista {
		if r.ID == id {
			return i
		}
	}
	return -1
}
