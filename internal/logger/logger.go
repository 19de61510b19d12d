// Package logger monta o *zap.Logger do serviço.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New cria um logger JSON de produção no nível pedido ("debug", "info",
// "warn", "error"); nível desconhecido vira info.
func New(nivel string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(Nivel(nivel))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build(zap.Fields(zap.String("service", "api-documentos")))
}

func Nivel(nivel string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(nivel)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
