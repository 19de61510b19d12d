// Package config lê a configuração do serviço do ambiente (com .env opcional).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Porta    string
	LogLevel string

	DB DB

	AuthChavePrivada string
	AuthKID          string
	AuthIssuer       string
	AuthAudience     string

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3TTL      time.Duration

	WebhookURL  string
	CorsOrigins []string

	// Diferença máxima, em centavos, entre a soma do rateio e o total.
	ToleranciaRateio int64

	// Tetos do cronograma de parcelas.
	MaxParcelas  int
	MaxIntervalo int
}

type DB struct {
	Host       string
	Porta      uint
	Nome       string
	SecretID   string
	Usuario    string
	Senha      string
	SSLDisable bool
}

// Carregar lê o .env (se existir) e depois as variáveis de ambiente.
func Carregar(arquivos ...string) Config {
	_ = godotenv.Load(arquivos...)
	return FromEnv()
}

// FromEnv monta a configuração só a partir do ambiente atual.
func FromEnv() Config {
	return Config{
		Porta:    getenv("PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		DB: DB{
			Host:       getenv("DB_HOST", "localhost"),
			Porta:      uint(getenvInt("DB_PORT", 5432)),
			Nome:       getenv("DB_NAME", "documentos"),
			SecretID:   os.Getenv("DB_SECRET_ID"),
			Usuario:    os.Getenv("DB_USERNAME"),
			Senha:      os.Getenv("DB_PASSWORD"),
			SSLDisable: os.Getenv("DB_SSL_MODE_DISABLE") == "true",
		},
		AuthChavePrivada: os.Getenv("AUTH_RSA_PRIVATE_PATH"),
		AuthKID:          os.Getenv("AUTH_KID"),
		AuthIssuer:       os.Getenv("AUTH_ISSUER"),
		AuthAudience:     os.Getenv("AUTH_AUDIENCE"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         getenv("AWS_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3TTL:            getenvDuration("S3_URL_TTL", 5*time.Minute),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		CorsOrigins:      lista(getenv("CORS_ORIGINS", "http://localhost:3000")),
		ToleranciaRateio: int64(getenvInt("TOLERANCIA_RATEIO", 1)),
		MaxParcelas:      getenvInt("PARCELAS_MAX", 360),
		MaxIntervalo:     getenvInt("CADENCIA_INTERVALO_MAX", 365),
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	n, err := strconv.Atoi(getenv(k, ""))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(k, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func lista(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
