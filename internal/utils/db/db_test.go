package db

import (
	"context"
	"errors"
	"testing"

	"github.com/KromaEnergia/api-documentos/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	valor  *string
	err    error
	pedido string
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.pedido = aws.ToString(in.SecretId)
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.valor}, nil
}

func TestRetrieveCredentialsDoAmbiente(t *testing.T) {
	fake := &fakeSecrets{}
	cred, err := RetrieveCredentials(context.Background(), config.DB{Usuario: "app", Senha: "s3nh4"}, fake)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "app", Password: "s3nh4"}, cred)
	assert.Empty(t, fake.pedido)
}

func TestRetrieveCredentialsDoSegredo(t *testing.T) {
	fake := &fakeSecrets{valor: aws.String(`{"username":"kroma","password":"x"}`)}
	cred, err := RetrieveCredentials(context.Background(), config.DB{SecretID: "prod/db"}, fake)
	require.NoError(t, err)
	assert.Equal(t, "kroma", cred.Username)
	assert.Equal(t, "prod/db", fake.pedido)
}

func TestRetrieveCredentialsFalhas(t *testing.T) {
	_, err := RetrieveCredentials(context.Background(), config.DB{}, nil)
	assert.Error(t, err)

	_, err = RetrieveCredentials(context.Background(), config.DB{SecretID: "s"}, &fakeSecrets{err: errors.New("AccessDenied")})
	assert.ErrorContains(t, err, "AccessDenied")

	_, err = RetrieveCredentials(context.Background(), config.DB{SecretID: "s"}, &fakeSecrets{valor: aws.String("{")})
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := config.DB{Host: "db", Porta: 5432, Nome: "documentos", SSLDisable: true}
	assert.Equal(t,
		"host=db user=u password=p dbname=documentos port=5432 sslmode=disable",
		DSN(cfg, Credentials{Username: "u", Password: "p"}))
}
