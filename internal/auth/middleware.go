package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const CtxUsuarioID ctxKey = "usuarioID"

// Middleware exige um Bearer válido e põe o usuário no contexto.
func (c *Chaves) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "Token ausente", http.StatusUnauthorized)
			return
		}
		claims, err := c.ParseAndValidate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			http.Error(w, "Token inválido", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ComUsuario(r.Context(), claims.UsuarioID)))
	})
}

// ComUsuario devolve um contexto com o usuário autenticado.
func ComUsuario(ctx context.Context, usuarioID string) context.Context {
	return context.WithValue(ctx, CtxUsuarioID, usuarioID)
}

// UsuarioID lê o usuário autenticado do contexto ("" se ausente).
func UsuarioID(ctx context.Context) string {
	id, _ := ctx.Value(CtxUsuarioID).(string)
	return id
}
