package parcelamento

import (
	"math"
	"sort"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/erros"
)

// Dividir reparte total (centavos) em quantidade parcelas. Toda parcela
// recebe total/quantidade e a primeira absorve o resto inteiro, de modo que
// a soma é sempre exatamente total. É função pura dos argumentos.
func Dividir(total int64, quantidade int, cadencia Cadencia, inicio time.Time) ([]Parcela, error) {
	if err := cadencia.Validar(); err != nil {
		return nil, err
	}
	valores, err := valores(total, quantidade)
	if err != nil {
		return nil, err
	}

	parcelas := make([]Parcela, quantidade)
	for i := range parcelas {
		numero := i + 1
		parcelas[i] = Parcela{
			Numero:         numero,
			Valor:          valores[i],
			DataVencimento: cadencia.Vencimento(inicio, numero),
		}
	}
	return parcelas, nil
}

func valores(total int64, quantidade int) ([]int64, error) {
	if quantidade <= 0 {
		return nil, erros.Novo(erros.ErrQuantidadeInvalida, "quantidade de parcelas deve ser positiva").
			Com("quantidade", quantidade)
	}
	if total < 0 {
		return nil, erros.Novo(erros.ErrValorNegativo, "total não pode ser negativo").
			Com("total", total)
	}

	n := int64(quantidade)
	base := total / n
	resto := total - base*n

	out := make([]int64, quantidade)
	for i := range out {
		out[i] = base
	}
	out[0] += resto
	return out, nil
}

// RecalcularValores refaz apenas os valores das parcelas existentes,
// preservando número, vencimento (inclusive edições manuais) e IDs.
func RecalcularValores(parcelas []Parcela, total int64) ([]Parcela, error) {
	if err := semPagas(parcelas); err != nil {
		return nil, err
	}
	novos, err := valores(total, len(parcelas))
	if err != nil {
		return nil, err
	}

	out := Ordenar(parcelas)
	for i := range out {
		out[i].Numero = i + 1
		out[i].Valor = novos[i]
	}
	return out, nil
}

// Regerar refaz o cronograma inteiro. Para cada número que já existia,
// o ID é mantido e, se o vencimento foi editado manualmente, a data do
// usuário prevalece sobre a gerada.
func Regerar(atuais []Parcela, total int64, quantidade int, cadencia Cadencia, inicio time.Time) ([]Parcela, error) {
	if err := semPagas(atuais); err != nil {
		return nil, err
	}
	novas, err := Dividir(total, quantidade, cadencia, inicio)
	if err != nil {
		return nil, err
	}

	porNumero := make(map[int]Parcela, len(atuais))
	for _, p := range atuais {
		porNumero[p.Numero] = p
	}
	for i := range novas {
		antiga, ok := porNumero[novas[i].Numero]
		if !ok {
			continue
		}
		novas[i].ID = antiga.ID
		novas[i].DocumentoID = antiga.DocumentoID
		if antiga.EditadaManualmente {
			novas[i].DataVencimento = antiga.DataVencimento
			novas[i].EditadaManualmente = true
		}
	}
	return novas, nil
}

// EditarVencimento altera manualmente o vencimento da parcela numero.
func EditarVencimento(parcelas []Parcela, numero int, data time.Time) ([]Parcela, error) {
	out := Ordenar(parcelas)
	for i := range out {
		if out[i].Numero != numero {
			continue
		}
		if out[i].Paga {
			return nil, erros.Novo(erros.ErrParcelaJaPaga, "parcela %d já foi paga", numero).
				Com("numero", numero)
		}
		out[i].DataVencimento = Dia(data)
		out[i].EditadaManualmente = true
		return out, nil
	}
	return nil, erros.Novo(erros.ErrParcelaNaoEncontrada, "parcela %d não existe", numero).
		Com("numero", numero)
}

// ValidarSoma exige números contíguos 1..N e soma exatamente igual ao total.
func ValidarSoma(parcelas []Parcela, total int64) error {
	ordenadas := Ordenar(parcelas)
	for i, p := range ordenadas {
		if p.Numero != i+1 {
			return erros.Novo(erros.ErrSomaParcelas, "numeração de parcelas com lacuna").
				Com("esperado", i+1).
				Com("encontrado", p.Numero)
		}
		if p.Valor < 0 {
			return erros.Novo(erros.ErrValorNegativo, "parcela %d com valor negativo", p.Numero).
				Com("numero", p.Numero).
				Com("valor", p.Valor)
		}
		if p.Valor > total {
			return erros.Novo(erros.ErrSomaParcelas, "parcela %d maior que o total do documento", p.Numero).
				Com("numero", p.Numero).
				Com("valor", p.Valor).
				Com("total", total)
		}
	}

	soma := Soma(parcelas)
	if soma != total {
		return erros.Novo(erros.ErrSomaParcelas, "soma das parcelas difere do total do documento").
			Com("soma", soma).
			Com("total", total).
			Com("delta", soma-total)
	}
	return nil
}

// Soma devolve a soma dos valores das parcelas, saturando em
// math.MaxInt64 em vez de dar a volta.
func Soma(parcelas []Parcela) int64 {
	var s int64
	for _, p := range parcelas {
		if p.Valor > 0 && s > math.MaxInt64-p.Valor {
			return math.MaxInt64
		}
		s += p.Valor
	}
	return s
}

// Ordenar devolve uma cópia ordenada por número.
func Ordenar(parcelas []Parcela) []Parcela {
	out := make([]Parcela, len(parcelas))
	copy(out, parcelas)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out
}

func semPagas(parcelas []Parcela) error {
	for _, p := range parcelas {
		if p.Paga {
			return erros.Novo(erros.ErrParcelaJaPaga, "cronograma com parcela paga não pode ser refeito").
				Com("numero", p.Numero)
		}
	}
	return nil
}
