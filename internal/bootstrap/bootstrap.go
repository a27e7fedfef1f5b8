// Package bootstrap wires configuration, storage, repositories and services
// into a runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/intradocs/intradocs/internal/adapters/http"
	"github.com/intradocs/intradocs/internal/config"
	"github.com/intradocs/intradocs/internal/core/usecase"
	"github.com/intradocs/intradocs/internal/infrastructure/cache/memory"
	"github.com/intradocs/intradocs/internal/infrastructure/repository/postgres"
	"github.com/intradocs/intradocs/internal/infrastructure/resilience"
	"github.com/intradocs/intradocs/internal/infrastructure/storage"
	"github.com/intradocs/intradocs/internal/infrastructure/storage/s3blob"
	"github.com/intradocs/intradocs/internal/observability/logging"
	"github.com/intradocs/intradocs/internal/observability/metrics"
)

const serviceName = "intradocs-api"

type App struct {
	Handler http.Handler
	Logger  *slog.Logger
	Addr    string

	closers []func() error
}

// Close releases resources in reverse wiring order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	blobs, err := storage.New(ctx, storage.Options{
		Backend:      cfg.StorageBackend,
		LocalPath:    cfg.StoragePath,
		LocalBaseURL: cfg.StorageBaseURL,
		S3: s3blob.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		},
		Guard: resilience.DefaultConfig(),
	}, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	m := metrics.New(serviceName)
	cache := memory.New(memory.WithLookupObserver(m.CacheObserver()))

	docRepo := postgres.NewDocumentRepository(db)
	hierRepo := postgres.NewHierarchyRepository(db)
	userRepo := postgres.NewUserRepository(db)
	newsRepo := postgres.NewNewsRepository(db)

	uploader := usecase.NewUploadAdapter(blobs, cfg.UploadPrefix)
	hierarchy := usecase.NewHierarchyUseCase(hierRepo, docRepo, cache, log)
	documents := usecase.NewDocumentUseCase(docRepo, hierarchy, uploader, cache, log)
	auth := usecase.NewAuthUseCase(userRepo, cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, log)
	news := usecase.NewNewsUseCase(newsRepo, docRepo, cache, log)
	reports := usecase.NewReportUseCase(docRepo, cache, log)

	staticDir := ""
	if cfg.StorageBackend == "" || cfg.StorageBackend == "local" {
		staticDir = cfg.StoragePath
	}

	router := httpadapter.NewRouter(documents, hierarchy, auth, news, reports, httpadapter.Options{
		Logger:              log,
		Metrics:             m,
		LoginRateLimitRPS:   cfg.LoginRateLimitRPS,
		LoginRateLimitBurst: cfg.LoginRateLimitBurst,
		StaticFilesDir:      staticDir,
	})

	return &App{
		Handler: router.Handler(),
		Logger:  log,
		Addr:    ":" + cfg.APIPort,
		closers: []func() error{db.Close},
	}, nil
}
