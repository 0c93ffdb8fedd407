package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/yanqian/beachsafety/internal/domain/alert"
	"github.com/yanqian/beachsafety/internal/domain/analytics"
	"github.com/yanqian/beachsafety/internal/domain/auth"
	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
	"github.com/yanqian/beachsafety/internal/domain/override"
	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

// Attribution lists the upstream providers behind the fleet.
var Attribution = map[string]string{
	"marine":  "Open-Meteo Marine API",
	"weather": "Open-Meteo Forecast API",
	"buoy":    "NOAA NDBC (46026 San Francisco, 46012 Half Moon Bay, 46042 Monterey)",
	"tides":   "NOAA CO-OPS tide predictions",
	"alerts":  "National Weather Service (CAZ509)",
}

// FleetReader serves aggregated beach snapshots.
type FleetReader interface {
	Get(ctx context.Context) *conditions.Fleet
	Beach(ctx context.Context, id string) (beach.Beach, bool)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	fleet        FleetReader
	alerts       conditions.HazardAlertSource
	customAlerts alert.Service
	overrides    override.Service
	analytics    analytics.Service
	authSvc      auth.Service
	cookie       SessionCookie
	clock        clockwork.Clock
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	cookie SessionCookie,
	fleet FleetReader,
	alerts conditions.HazardAlertSource,
	customAlerts alert.Service,
	overrides override.Service,
	analyticsSvc analytics.Service,
	authSvc auth.Service,
	clock clockwork.Clock,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		fleet:        fleet,
		alerts:       alerts,
		customAlerts: customAlerts,
		overrides:    overrides,
		analytics:    analyticsSvc,
		authSvc:      authSvc,
		cookie:       cookie,
		clock:        clock,
		logger:       logger.With("component", "http.handler"),
	}
}

// respond writes the success envelope; extra keys sit beside data.
func (h *Handler) respond(c *gin.Context, data any, extra gin.H) {
	body := gin.H{
		"success":   true,
		"data":      data,
		"timestamp": h.clock.Now().UTC(),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// ListBeaches returns the cached fleet.
func (h *Handler) ListBeaches(c *gin.Context) {
	fleet := h.fleet.Get(c.Request.Context())
	h.respond(c, fleet.Beaches, gin.H{
		"generatedAt": fleet.GeneratedAt,
		"sources":     Attribution,
	})
}

// GetBeach returns one beach from the cached fleet.
func (h *Handler) GetBeach(c *gin.Context) {
	id := c.Param("id")
	b, ok := h.fleet.Beach(c.Request.Context(), id)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, "beach not found", nil))
		return
	}
	h.respond(c, b, nil)
}

// ListHazardAlerts returns the active beach-safety alerts straight from the
// weather service.
func (h *Handler) ListHazardAlerts(c *gin.Context) {
	all, err := h.alerts.FetchAlerts(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadGateway, apperrors.CodeSourceError, "failed to fetch alerts", err))
		return
	}
	relevant := conditions.FilterBeachSafety(all)
	h.respond(c, relevant, gin.H{
		"count":  len(relevant),
		"source": Attribution["alerts"],
	})
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
