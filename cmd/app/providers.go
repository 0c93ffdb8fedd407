package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/beachsafety/internal/domain/alert"
	"github.com/yanqian/beachsafety/internal/domain/analytics"
	"github.com/yanqian/beachsafety/internal/domain/auth"
	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
	"github.com/yanqian/beachsafety/internal/domain/override"
	"github.com/yanqian/beachsafety/internal/infra/config"
	"github.com/yanqian/beachsafety/internal/infra/coops"
	"github.com/yanqian/beachsafety/internal/infra/ndbc"
	"github.com/yanqian/beachsafety/internal/infra/nws"
	"github.com/yanqian/beachsafety/internal/infra/openmeteo"
	"github.com/yanqian/beachsafety/internal/infra/store"
	httpiface "github.com/yanqian/beachsafety/internal/interface/http"
	"github.com/yanqian/beachsafety/pkg/metrics"
)

func provideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func provideCatalog(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) (*beach.Catalog, error) {
	catalog, err := beach.LoadCatalog(cfg.Beaches.CatalogPath, clock.Now())
	if err != nil {
		return nil, err
	}
	logger.Info("beach catalog loaded", "beaches", catalog.Len(), "path", cfg.Beaches.CatalogPath)
	return catalog, nil
}

func provideSourceHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Sources.Timeout}
}

func provideOpenMeteoClient(cfg *config.Config, client *http.Client, logger *slog.Logger) *openmeteo.Client {
	return openmeteo.NewClient(openmeteo.Config{
		ForecastURL: cfg.Sources.OpenMeteoForecastURL,
		MarineURL:   cfg.Sources.OpenMeteoMarineURL,
		Timezone:    cfg.Sources.Timezone,
	}, client, logger)
}

func provideNDBCClient(cfg *config.Config, client *http.Client, logger *slog.Logger) *ndbc.Client {
	return ndbc.NewClient(cfg.Sources.NDBCBaseURL, client, logger)
}

func provideTideClient(cfg *config.Config, client *http.Client, clock clockwork.Clock, logger *slog.Logger) (*coops.Client, error) {
	loc, err := time.LoadLocation(cfg.Sources.Timezone)
	if err != nil {
		return nil, err
	}
	return coops.NewClient(cfg.Sources.TidesURL, loc, client, clock, logger), nil
}

func provideNWSClient(cfg *config.Config, client *http.Client, logger *slog.Logger) *nws.Client {
	return nws.NewClient(nws.Config{
		BaseURL:   cfg.Sources.NWSBaseURL,
		Zone:      cfg.Sources.AlertZone,
		UserAgent: cfg.Sources.UserAgent,
	}, client, logger)
}

func provideSources(om *openmeteo.Client, buoys *ndbc.Client, tides *coops.Client, alerts *nws.Client) conditions.Sources {
	return conditions.Sources{
		Marine:  om,
		Weather: om,
		Buoy:    buoys,
		Tide:    tides,
		Alerts:  alerts,
	}
}

func provideAggregatorConfig(cfg *config.Config) conditions.AggregatorConfig {
	return conditions.AggregatorConfig{MaxConcurrency: cfg.Aggregation.MaxConcurrency}
}

func provideCache(cfg *config.Config, catalog *beach.Catalog, aggregator *conditions.Aggregator, m *metrics.Metrics, clock clockwork.Clock, logger *slog.Logger) *conditions.Cache {
	return conditions.NewCache(cfg.Aggregation.CacheTTL, catalog, aggregator, m, clock, logger)
}

// provideBackend picks the first reachable remote store, in the order
// valkey, postgres, r2, and falls back to JSON files on local disk.
func provideBackend(cfg *config.Config, logger *slog.Logger) store.Backend {
	fallback := store.NewFileBackend(cfg.Storage.DataDir)
	if backend := valkeyBackend(cfg, logger); backend != nil {
		return backend
	}
	if backend := postgresBackend(cfg, logger); backend != nil {
		return backend
	}
	if backend := r2Backend(cfg, logger); backend != nil {
		return backend
	}
	logger.Info("using file store", "dir", cfg.Storage.DataDir)
	return fallback
}

func valkeyBackend(cfg *config.Config, logger *slog.Logger) store.Backend {
	if !cfg.Storage.Valkey.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, trying next store", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, trying next store", "error", err)
		return nil
	}
	backend := store.NewValkeyBackend(client, cfg.Storage.Valkey.Prefix)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := backend.Ping(ctx); err != nil {
		logger.Error("valkey ping failed, trying next store", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey store enabled", "addr", cfg.Storage.Valkey.Addr)
	return backend
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Storage.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Storage.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Storage.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func postgresBackend(cfg *config.Config, logger *slog.Logger) store.Backend {
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, trying next store", "error", err)
		return nil
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, trying next store", "error", err)
		return nil
	}
	backend := store.NewPostgresBackend(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := backend.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, trying next store", "error", err)
		pool.Close()
		return nil
	}
	if err := backend.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, trying next store", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres store enabled")
	return backend
}

func r2Backend(cfg *config.Config, logger *slog.Logger) store.Backend {
	r2 := cfg.Storage.R2
	if !r2.Enabled() {
		return nil
	}
	backend, err := store.NewR2Backend(store.R2Options{
		Endpoint:  r2.Endpoint,
		AccessKey: r2.AccessKey,
		SecretKey: r2.SecretKey,
		Bucket:    r2.Bucket,
		Region:    r2.Region,
		Prefix:    r2.Prefix,
	}, logger)
	if err != nil {
		logger.Error("failed to create r2 client, using file store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := backend.Ping(ctx); err != nil {
		logger.Error("r2 bucket unreachable, using file store", "error", err)
		return nil
	}
	logger.Info("r2 store enabled", "bucket", r2.Bucket)
	return backend
}

func provideOverrideRepository(backend store.Backend) override.Repository {
	return store.NewCollection[override.Override](backend, store.KeyAdminUpdates)
}

func provideAlertRepository(backend store.Backend) alert.Repository {
	return store.NewCollection[alert.Alert](backend, store.KeyCustomAlerts)
}

func provideAnalyticsRepository(backend store.Backend) analytics.Repository {
	return store.NewCollection[analytics.Event](backend, store.KeyAnalyticsEvents)
}

func provideOverrideConfig(cfg *config.Config) override.Config {
	return override.Config{MaxEntries: cfg.Overrides.MaxEntries}
}

func provideAnalyticsConfig(cfg *config.Config) analytics.Config {
	return analytics.Config{MaxEvents: cfg.Analytics.MaxEvents}
}

func provideAuthConfig(cfg *config.Config, logger *slog.Logger) auth.Config {
	if cfg.Admin.SessionSecret == "" || (cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "") {
		logger.Warn("admin login disabled: password or session secret not set")
	}
	return auth.Config{
		Password:     cfg.Admin.Password,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.Admin.SessionSecret,
		SessionTTL:   cfg.Admin.SessionTTL,
	}
}

func provideSessionCookie(cfg *config.Config) httpiface.SessionCookie {
	return httpiface.SessionCookie{Name: cfg.Admin.CookieName, Secure: cfg.Admin.SecureCookie}
}
