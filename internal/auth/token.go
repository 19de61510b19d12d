package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims do token de acesso emitido pelo serviço de identidade. O usuário
// é o subject; é o mesmo id usado nos signatários dos documentos.
type Claims struct {
	UsuarioID string `json:"usuarioId"`
	jwt.RegisteredClaims
}

// ParseAndValidate valida assinatura, iss, aud e exp.
func (c *Chaves) ParseAndValidate(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		k, _ := t.Header["kid"].(string)
		if k == "" {
			return nil, errors.New("kid ausente")
		}
		pub, ok := c.pub(k)
		if !ok {
			return nil, errors.New("kid desconhecido")
		}
		return pub, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("token inválido")
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, errors.New("claims inválidas")
	}
	if claims.UsuarioID == "" {
		claims.UsuarioID = claims.Subject
	}
	if claims.UsuarioID == "" {
		return nil, errors.New("token sem usuário")
	}
	return claims, nil
}
