package db

import (
	"context"

	"github.com/KromaEnergia/api-documentos/internal/config"
	"gorm.io/gorm"
)

// GetDB resolve as credenciais (env ou Secrets Manager) e conecta.
func GetDB(ctx context.Context, cfg config.DB) (*gorm.DB, error) {
	var cliente SecretsClient
	if cfg.Usuario == "" || cfg.Senha == "" {
		c, err := initSecretsClient(ctx)
		if err != nil {
			return nil, err
		}
		cliente = c
	}
	cred, err := RetrieveCredentials(ctx, cfg, cliente)
	if err != nil {
		return nil, err
	}
	return ConnectDataBase(cfg, cred)
}
