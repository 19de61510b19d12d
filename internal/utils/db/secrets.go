package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KromaEnergia/api-documentos/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretsClient é o subconjunto do Secrets Manager usado aqui.
type SecretsClient interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func initSecretsClient(ctx context.Context) (*secretsmanager.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// RetrieveCredentials usa DB_USERNAME/DB_PASSWORD quando presentes; senão
// lê o segredo DB_SECRET_ID.
func RetrieveCredentials(ctx context.Context, cfg config.DB, secrets SecretsClient) (Credentials, error) {
	if cfg.Usuario != "" && cfg.Senha != "" {
		return Credentials{Username: cfg.Usuario, Password: cfg.Senha}, nil
	}
	if cfg.SecretID == "" || secrets == nil {
		return Credentials{}, errors.New("credenciais do banco ausentes: defina DB_USERNAME/DB_PASSWORD ou DB_SECRET_ID")
	}

	result, err := secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(cfg.SecretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("ler segredo %s: %w", cfg.SecretID, err)
	}
	if result.SecretString == nil {
		return Credentials{}, fmt.Errorf("segredo %s sem SecretString", cfg.SecretID)
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return Credentials{}, fmt.Errorf("decodificar segredo %s: %w", cfg.SecretID, err)
	}
	return secret, nil
}
