// Package main is the entry point for the studio server. It wires storage,
// the editor session layer, seeds, payments, and the HTTP transport together.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/config"
	"github.com/getcoveredlife/studio/internal/editor"
	"github.com/getcoveredlife/studio/internal/jobs"
	"github.com/getcoveredlife/studio/internal/media"
	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/internal/payment"
	"github.com/getcoveredlife/studio/internal/seed"
	"github.com/getcoveredlife/studio/internal/storage"
	"github.com/getcoveredlife/studio/internal/transport"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "studio", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)

	// Storage driver selection.
	store, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		logger.Error("storage initialization failed", zap.Error(err))
		return 1
	}
	defer store.Close()
	logger.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	// Seed pages and tokens, then optionally hot-reload on file changes.
	var seedsLoaded atomic.Bool
	seeder := seed.NewSeeder(store, metrics, logger)
	inserted, err := seeder.Apply(ctx, cfg.Seeds.Directory)
	if err != nil {
		logger.Error("seed loading failed", zap.Error(err))
		return 1
	}
	seedsLoaded.Store(true)
	logger.Info("seeds applied",
		zap.String("directory", cfg.Seeds.Directory),
		zap.Int("inserted", inserted))

	if cfg.Seeds.HotReload {
		watcher, err := seed.NewWatcher(cfg.Seeds.Directory, seeder, logger)
		if err != nil {
			logger.Error("seed watcher failed", zap.Error(err))
			return 1
		}
		watcher.Start(ctx)
		defer watcher.Stop()
		logger.Info("seed hot reload enabled")
	}

	sessions := editor.NewManager(
		editor.WithSessionTTL(cfg.Editor.SessionTTL),
		editor.WithStoreHistoryLimit(cfg.Editor.HistoryLimit),
	)

	// Payments are optional; the checkout and webhook routes reject requests
	// when unconfigured.
	var payments payment.Client
	var webhooks *payment.Verifier
	if cfg.Payment.Enabled {
		secretKey := os.Getenv(cfg.Payment.SecretKeyEnv)
		webhookSecret := os.Getenv(cfg.Payment.WebhookSecretEnv)
		if secretKey == "" || webhookSecret == "" {
			logger.Error("payment is enabled but secrets are not set",
				zap.String("secret_key_env", cfg.Payment.SecretKeyEnv),
				zap.String("webhook_secret_env", cfg.Payment.WebhookSecretEnv))
			return 1
		}
		payments = payment.NewHTTPClient(cfg.Payment, secretKey)
		webhooks = payment.NewVerifier([]byte(webhookSecret))
	}

	uploader, err := media.NewDiskUploader(cfg.Media.Directory, cfg.Media.PublicPath, cfg.Media.MaxSizeMB)
	if err != nil {
		logger.Error("media storage initialization failed", zap.Error(err))
		return 1
	}

	jwtSecret, err := cfg.JWTSecret()
	if err != nil {
		logger.Error("admin auth initialization failed", zap.Error(err))
		return 1
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:       cfg,
		Log:          logger,
		Metrics:      metrics,
		Store:        store,
		Sessions:     sessions,
		Payments:     payments,
		Webhooks:     webhooks,
		Uploader:     uploader,
		Authenticate: transport.JWTAuthenticator(cfg.Identity, jwtSecret),
		SeedsLoaded:  seedsLoaded.Load,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = jobs.NewScheduler(cfg.Jobs, jobs.Dependencies{
			Sessions: sessions,
			Orders:   store,
			Metrics:  metrics,
			Log:      logger,
		})
		if err != nil {
			logger.Error("job scheduler initialization failed", zap.Error(err))
			return 1
		}
		scheduler.Start()
	}

	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// buildStore selects the persistence driver from configuration.
func buildStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "postgres":
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			return nil, fmt.Errorf("storage: %s is not set", cfg.DSNEnv)
		}
		return storage.NewPgStore(ctx, dsn)
	case "sqlite":
		return storage.NewSqliteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
