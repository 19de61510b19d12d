package documento

import (
	"time"

	"github.com/KromaEnergia/api-documentos/internal/assinatura"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/KromaEnergia/api-documentos/internal/rateio"
	"github.com/shopspring/decimal"
)

// Progresso da coleta de assinaturas.
type Progresso struct {
	Assinados  int             `json:"assinados"`
	Total      int             `json:"total"`
	Percentual decimal.Decimal `json:"percentual"`
}

// ResumoParcelas totaliza o cronograma. Vencido: vencimento anterior a hoje
// e não pago. A vencer: demais não pagas.
type ResumoParcelas struct {
	Quantidade int   `json:"quantidade"`
	Total      int64 `json:"total"`
	Pago       int64 `json:"pago"`
	Vencido    int64 `json:"vencido"`
	AVencer    int64 `json:"aVencer"`
}

// Resumo é a projeção somente-leitura de um documento. Nunca é gravado;
// é recalculado a partir das coleções a cada leitura ou mutação.
type Resumo struct {
	Status    assinatura.StatusDocumento `json:"status"`
	Ativo     *assinatura.Signatario     `json:"ativo,omitempty"`
	Progresso Progresso                  `json:"progresso"`
	Parcelas  ResumoParcelas             `json:"parcelas"`
	Rateio    rateio.Resumo              `json:"rateio"`
}

// Resumir calcula o resumo de doc no instante agora.
func Resumir(doc *Documento, agora time.Time) Resumo {
	r := Resumo{
		Status:    doc.StatusAtual(),
		Progresso: progresso(doc.Signatarios),
		Parcelas:  resumirParcelas(doc.Parcelas, agora),
		Rateio:    rateio.Resumir(doc.Rateios, doc.TotalOuZero()),
	}
	switch r.Status {
	case assinatura.DocumentoPendente, assinatura.DocumentoEmAndamento:
		r.Ativo = assinatura.Ativo(doc.Signatarios)
	}
	return r
}

func progresso(signatarios []assinatura.Signatario) Progresso {
	p := Progresso{Total: len(signatarios), Percentual: decimal.Zero}
	for _, s := range signatarios {
		if s.Status == assinatura.StatusAssinado {
			p.Assinados++
		}
	}
	if p.Total > 0 {
		p.Percentual = decimal.NewFromInt(int64(p.Assinados)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(p.Total))).
			Round(2)
	}
	return p
}

func resumirParcelas(parcelas []parcelamento.Parcela, agora time.Time) ResumoParcelas {
	hoje := parcelamento.Dia(agora)
	r := ResumoParcelas{Quantidade: len(parcelas)}
	for _, p := range parcelas {
		r.Total += p.Valor
		switch {
		case p.Paga:
			r.Pago += p.Valor
		case parcelamento.Dia(p.DataVencimento).Before(hoje):
			r.Vencido += p.Valor
		default:
			r.AVencer += p.Valor
		}
	}
	return r
}
