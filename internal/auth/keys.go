package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// Chaves guarda o par RSA ativo e os parâmetros de validação dos tokens.
type Chaves struct {
	priv     *rsa.PrivateKey
	pubs     map[string]*rsa.PublicKey // kid -> pub
	kid      string
	issuer   string
	audience string
}

// CarregarChaves lê a chave privada (PKCS#1 ou PKCS#8) do caminho informado.
func CarregarChaves(caminho, kid, issuer, audience string) (*Chaves, error) {
	if caminho == "" || kid == "" || issuer == "" || audience == "" {
		return nil, errors.New("missing envs: AUTH_RSA_PRIVATE_PATH/AUTH_KID/AUTH_ISSUER/AUTH_AUDIENCE")
	}

	b, err := os.ReadFile(caminho)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("pem decode private key failed")
	}

	var pk any
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		pk = k
	} else if k8, err2 := x509.ParsePKCS8PrivateKey(block.Bytes); err2 == nil {
		pk = k8
	} else {
		return nil, fmt.Errorf("parse private key: %v / %v", err, err2)
	}

	priv, ok := pk.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return NovasChaves(priv, kid, issuer, audience), nil
}

// NovasChaves monta as chaves a partir de uma chave já carregada.
func NovasChaves(priv *rsa.PrivateKey, kid, issuer, audience string) *Chaves {
	return &Chaves{
		priv:     priv,
		pubs:     map[string]*rsa.PublicKey{kid: &priv.PublicKey},
		kid:      kid,
		issuer:   issuer,
		audience: audience,
	}
}

func (c *Chaves) pub(kid string) (*rsa.PublicKey, bool) {
	p, ok := c.pubs[kid]
	return p, ok
}
