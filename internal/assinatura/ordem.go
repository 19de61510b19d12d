package assinatura

import (
	"sort"
	"strings"

	"github.com/KromaEnergia/api-documentos/internal/erros"
)

// Ativo devolve o signatário pendente de menor ordem, ou nil se não há
// pendentes. A posição no slice é irrelevante; só Ordem conta.
func Ativo(signatarios []Signatario) *Signatario {
	var ativo *Signatario
	for i := range signatarios {
		s := &signatarios[i]
		if s.Status != StatusPendente {
			continue
		}
		if ativo == nil || s.Ordem < ativo.Ordem {
			ativo = s
		}
	}
	if ativo == nil {
		return nil
	}
	c := *ativo
	return &c
}

// RelacaoDe classifica a relação de usuarioID com o fluxo. A primeira regra
// que casar vence: não signatário, já assinou, rejeitou, é a vez dele,
// aguardando a vez.
func RelacaoDe(signatarios []Signatario, usuarioID string) Relacao {
	s := doUsuario(signatarios, usuarioID)
	if s == nil {
		return NaoSignatario
	}
	switch s.Status {
	case StatusAssinado:
		return JaAssinou
	case StatusRejeitado:
		return Rejeitou
	}
	if ativo := Ativo(signatarios); ativo != nil && ativo.ID == s.ID && ativo.Ordem == s.Ordem {
		return PodeAssinar
	}
	return AguardandoVez
}

// ValidarOrdem confere a lista informada na submissão: ao menos um
// signatário, usuários preenchidos e únicos, ordens positivas e únicas.
// Ordens não precisam ser contíguas.
func ValidarOrdem(signatarios []Signatario) error {
	if len(signatarios) == 0 {
		return erros.Novo(erros.ErrSignatariosInvalidos, "informe ao menos um signatário")
	}
	ordens := make(map[int]bool, len(signatarios))
	usuarios := make(map[string]bool, len(signatarios))
	for _, s := range signatarios {
		u := strings.TrimSpace(s.UsuarioID)
		if u == "" {
			return erros.Novo(erros.ErrSignatariosInvalidos, "signatário sem usuário").
				Com("ordem", s.Ordem)
		}
		if s.Ordem <= 0 {
			return erros.Novo(erros.ErrSignatariosInvalidos, "ordem deve ser positiva").
				Com("usuarioId", u).
				Com("ordem", s.Ordem)
		}
		if ordens[s.Ordem] {
			return erros.Novo(erros.ErrSignatariosInvalidos, "ordem %d repetida", s.Ordem).
				Com("ordem", s.Ordem)
		}
		if usuarios[u] {
			return erros.Novo(erros.ErrSignatariosInvalidos, "usuário %s repetido", u).
				Com("usuarioId", u)
		}
		ordens[s.Ordem] = true
		usuarios[u] = true
	}
	return nil
}

// Ordenar devolve uma cópia ordenada por Ordem.
func Ordenar(signatarios []Signatario) []Signatario {
	out := make([]Signatario, len(signatarios))
	copy(out, signatarios)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ordem < out[j].Ordem })
	return out
}

func doUsuario(signatarios []Signatario, usuarioID string) *Signatario {
	if usuarioID == "" {
		return nil
	}
	for i := range signatarios {
		if signatarios[i].UsuarioID == usuarioID {
			return &signatarios[i]
		}
	}
	return nil
}
