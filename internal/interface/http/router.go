package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/beachsafety/internal/infra/config"
	"github.com/yanqian/beachsafety/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics, gatherer prometheus.Gatherer) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		metricsMiddleware(m),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	admin := authMiddleware(handler.authSvc, handler.cookie.Name)

	api := router.Group("/api")
	{
		beaches := api.Group("/beaches", requestTimeout(cfg.HTTP.RequestTimeout))
		beaches.GET("", handler.ListBeaches)
		beaches.GET("/:id", handler.GetBeach)

		api.GET("/alerts", handler.ListHazardAlerts)

		api.GET("/custom-alerts", handler.ListCustomAlerts)
		api.POST("/custom-alerts", admin, handler.CreateCustomAlert)
		api.DELETE("/custom-alerts", admin, handler.DeactivateCustomAlert)

		api.GET("/admin/beach-update", admin, handler.ListOverrides)
		api.POST("/admin/beach-update", admin, handler.SaveOverride)
		api.DELETE("/admin/beach-update", admin, handler.ResetOverride)

		api.POST("/auth/login", handler.Login)
		api.POST("/auth/logout", handler.Logout)

		api.POST("/analytics/track", handler.TrackEvent)
		api.GET("/analytics/stats", admin, handler.AnalyticsStats)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
