//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/beachsafety/internal/bootstrap"
	"github.com/yanqian/beachsafety/internal/domain/alert"
	"github.com/yanqian/beachsafety/internal/domain/analytics"
	"github.com/yanqian/beachsafety/internal/domain/auth"
	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
	"github.com/yanqian/beachsafety/internal/domain/override"
	"github.com/yanqian/beachsafety/internal/infra/config"
	"github.com/yanqian/beachsafety/internal/infra/nws"
	httpiface "github.com/yanqian/beachsafety/internal/interface/http"
	"github.com/yanqian/beachsafety/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideClock,
		provideRegistry,
		provideMetrics,
		provideCatalog,
		provideSourceHTTPClient,
		provideOpenMeteoClient,
		provideNDBCClient,
		provideTideClient,
		provideNWSClient,
		provideSources,
		provideAggregatorConfig,
		provideCache,
		provideBackend,
		provideOverrideRepository,
		provideAlertRepository,
		provideAnalyticsRepository,
		provideOverrideConfig,
		provideAnalyticsConfig,
		provideAuthConfig,
		provideSessionCookie,
		override.NewReader,
		conditions.NewAggregator,
		override.NewService,
		alert.NewService,
		analytics.NewService,
		auth.NewService,
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		wire.Bind(new(conditions.OverrideSource), new(*override.Reader)),
		wire.Bind(new(override.Catalog), new(*beach.Catalog)),
		wire.Bind(new(override.Invalidator), new(*conditions.Cache)),
		wire.Bind(new(alert.Catalog), new(*beach.Catalog)),
		wire.Bind(new(alert.Invalidator), new(*conditions.Cache)),
		wire.Bind(new(conditions.HazardAlertSource), new(*nws.Client)),
		wire.Bind(new(httpiface.FleetReader), new(*conditions.Cache)),
		wire.Bind(new(bootstrap.Warmer), new(*conditions.Cache)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
