package db

import (
	"fmt"

	"github.com/KromaEnergia/api-documentos/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDataBase abre a conexão postgres com as credenciais já resolvidas.
func ConnectDataBase(cfg config.DB, cred Credentials) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(DSN(cfg, cred)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("conectar no banco %s: %w", cfg.Nome, err)
	}
	return database, nil
}

func DSN(cfg config.DB, cred Credentials) string {
	var sslMode string
	if cfg.SSLDisable {
		sslMode = " sslmode=disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s",
		cfg.Host, cred.Username, cred.Password, cfg.Nome, cfg.Porta, sslMode)
}
