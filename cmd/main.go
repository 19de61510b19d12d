package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/KromaEnergia/api-documentos/internal/arquivos"
	"github.com/KromaEnergia/api-documentos/internal/auth"
	"github.com/KromaEnergia/api-documentos/internal/config"
	"github.com/KromaEnergia/api-documentos/internal/documento"
	"github.com/KromaEnergia/api-documentos/internal/logger"
	"github.com/KromaEnergia/api-documentos/internal/notificacao"
	"github.com/KromaEnergia/api-documentos/internal/parcelamento"
	"github.com/KromaEnergia/api-documentos/internal/utils/db"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Carregar()

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Erro ao criar logger:", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()

	database, err := db.GetDB(ctx, cfg.DB)
	if err != nil {
		lg.Fatal("Erro ao conectar no banco", zap.Error(err))
	}
	if err := documento.Migrate(database); err != nil {
		lg.Fatal("Erro no AutoMigrate", zap.Error(err))
	}

	chaves, err := auth.CarregarChaves(cfg.AuthChavePrivada, cfg.AuthKID, cfg.AuthIssuer, cfg.AuthAudience)
	if err != nil {
		lg.Fatal("Erro ao carregar chaves JWT", zap.Error(err))
	}

	storage, err := arquivos.NewS3Storage(ctx, arquivos.Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
		TTL:      cfg.S3TTL,
	})
	if err != nil {
		lg.Fatal("Erro ao configurar S3", zap.Error(err))
	}

	servico := documento.NovoServico(
		documento.NewRepository(database),
		documento.ComArquivos(storage),
		documento.ComNotificador(notificacao.NewWebhook(cfg.WebhookURL, lg)),
		documento.ComLogger(lg),
		documento.ComToleranciaRateio(cfg.ToleranciaRateio),
		documento.ComLimitesParcelamento(parcelamento.Limites{
			MaxParcelas:  cfg.MaxParcelas,
			MaxIntervalo: cfg.MaxIntervalo,
		}),
	)
	documentoHandler := documento.NewHandler(servico, lg)

	// Router
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	r.HandleFunc("/.well-known/jwks.json", chaves.JWKSHandler).Methods("GET")

	// Rotas autenticadas
	api := r.NewRoute().Subrouter()
	api.Use(chaves.Middleware)
	documentoHandler.Registrar(api)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Porta,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lg.Info("Servidor rodando", zap.String("porta", cfg.Porta))
	if err := srv.ListenAndServe(); err != nil {
		lg.Fatal("Servidor encerrado", zap.Error(err))
	}
}
