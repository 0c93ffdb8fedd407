package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/beachsafety/internal/infra/config"
)

// Warmer primes derived state before traffic arrives.
type Warmer interface {
	Warm(ctx context.Context)
}

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	warmer Warmer
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, warmer Warmer) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, warmer: warmer}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Aggregation.WarmOnStart && a.warmer != nil {
		go func() {
			start := time.Now()
			a.warmer.Warm(ctx)
			a.logger.Info("startup warm-up finished", "latency_ms", time.Since(start).Milliseconds())
		}()
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
