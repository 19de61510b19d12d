// Package arquivos gera URLs de upload para comprovantes de pagamento e
// arquivos de documentos. O motor só consome a chave devolvida, como
// referência opaca.
package arquivos

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Storage é o colaborador de armazenamento de arquivos.
type Storage interface {
	GerarURLUpload(ctx context.Context, nomeArquivo string) (url string, chave string, err error)
}

// Config do bucket. Endpoint preenchido aponta para um S3 local (LocalStack).
type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	Prefixo  string
	TTL      time.Duration
}

type s3Storage struct {
	presigner *s3.PresignClient
	bucket    string
	prefixo   string
	ttl       time.Duration
}

var _ Storage = (*s3Storage)(nil)

// NewS3Storage carrega a configuração AWS padrão (ou credenciais de teste
// quando há Endpoint local) e devolve o Storage.
func NewS3Storage(ctx context.Context, cfg Config) (Storage, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return NewS3StorageFromConfig(awsCfg, cfg), nil
}

// NewS3StorageFromConfig monta o Storage a partir de um aws.Config pronto.
func NewS3StorageFromConfig(awsCfg aws.Config, cfg Config) Storage {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefixo := cfg.Prefixo
	if prefixo == "" {
		prefixo = "comprovantes"
	}
	return &s3Storage{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		prefixo:   prefixo,
		ttl:       ttl,
	}
}

// GerarURLUpload devolve uma URL pré-assinada de PUT e a chave do objeto.
func (s *s3Storage) GerarURLUpload(ctx context.Context, nomeArquivo string) (string, string, error) {
	chave := Chave(s.prefixo, uuid.NewString(), nomeArquivo)

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(chave),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return req.URL, chave, nil
}

var inseguro = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Chave monta prefixo/id/nome com o nome do arquivo saneado.
func Chave(prefixo, id, nomeArquivo string) string {
	nome := path.Base(strings.ReplaceAll(strings.TrimSpace(nomeArquivo), "\\", "/"))
	nome = strings.Trim(inseguro.ReplaceAllString(nome, "_"), "_")
	if nome == "" || nome == "." || nome == ".." {
		nome = "arquivo"
	}
	return path.Join(prefixo, id, nome)
}
