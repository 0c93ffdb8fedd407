package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/beachsafety/internal/domain/analytics"
	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

// TrackEvent appends a client usage event.
func (h *Handler) TrackEvent(c *gin.Context) {
	var req analytics.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}
	event, err := h.analytics.Track(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.respond(c, event, nil)
}

// AnalyticsStats summarises usage over 7, 30 or 90 days.
func (h *Handler) AnalyticsStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	stats, err := h.analytics.Stats(c.Request.Context(), analytics.NormalizeDays(days))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.respond(c, stats, nil)
}
