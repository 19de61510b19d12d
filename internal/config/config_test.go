package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvPadroes(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PORT", "CORS_ORIGINS", "TOLERANCIA_RATEIO", "S3_URL_TTL", "LOG_LEVEL", "PARCELAS_MAX", "CADENCIA_INTERVALO_MAX"} {
		t.Setenv(k, "")
	}

	c := FromEnv()
	assert.Equal(t, "8080", c.Porta)
	assert.Equal(t, uint(5432), c.DB.Porta)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CorsOrigins)
	assert.Equal(t, int64(1), c.ToleranciaRateio)
	assert.Equal(t, 5*time.Minute, c.S3TTL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 360, c.MaxParcelas)
	assert.Equal(t, 365, c.MaxIntervalo)
}

func TestFromEnvValores(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_SSL_MODE_DISABLE", "true")
	t.Setenv("CORS_ORIGINS", "https://app.kroma.com.br, https://admin.kroma.com.br ,")
	t.Setenv("TOLERANCIA_RATEIO", "0")
	t.Setenv("S3_URL_TTL", "90s")
	t.Setenv("PARCELAS_MAX", "48")
	t.Setenv("CADENCIA_INTERVALO_MAX", "60")

	c := FromEnv()
	assert.Equal(t, "9090", c.Porta)
	assert.Equal(t, uint(6543), c.DB.Porta)
	assert.True(t, c.DB.SSLDisable)
	assert.Equal(t, []string{"https://app.kroma.com.br", "https://admin.kroma.com.br"}, c.CorsOrigins)
	assert.Equal(t, int64(0), c.ToleranciaRateio)
	assert.Equal(t, 90*time.Second, c.S3TTL)
	assert.Equal(t, 48, c.MaxParcelas)
	assert.Equal(t, 60, c.MaxIntervalo)
}

func TestFromEnvValoresInvalidos(t *testing.T) {
	t.Setenv("DB_PORT", "abc")
	t.Setenv("TOLERANCIA_RATEIO", "-3")
	t.Setenv("S3_URL_TTL", "sempre")

	c := FromEnv()
	assert.Equal(t, uint(5432), c.DB.Porta)
	assert.Equal(t, int64(1), c.ToleranciaRateio)
	assert.Equal(t, 5*time.Minute, c.S3TTL)
}

func TestCarregarArquivoEnv(t *testing.T) {
	arq := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(arq, []byte("WEBHOOK_URL=http://hooks.local/doc\n"), 0o600))
	t.Setenv("WEBHOOK_URL", "")
	require.NoError(t, os.Unsetenv("WEBHOOK_URL"))

	c := Carregar(arq)
	assert.Equal(t, "http://hooks.local/doc", c.WebhookURL)
	require.NoError(t, os.Unsetenv("WEBHOOK_URL"))
}
