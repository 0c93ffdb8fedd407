package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/beachsafety/internal/domain/alert"
	"github.com/yanqian/beachsafety/internal/domain/auth"
	"github.com/yanqian/beachsafety/internal/domain/override"
	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

// ListCustomAlerts returns active county alerts, optionally narrowed by beach
// and language.
func (h *Handler) ListCustomAlerts(c *gin.Context) {
	items, err := h.customAlerts.Active(c.Request.Context(), alert.Filter{
		BeachID:  c.Query("beachId"),
		Language: c.Query("language"),
	})
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.respond(c, items, nil)
}

// CreateCustomAlert publishes a county alert.
func (h *Handler) CreateCustomAlert(c *gin.Context) {
	var req alert.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}
	created, err := h.customAlerts.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.logger.Info("custom alert created", "alert", created.ID, "actor", actor(c))
	h.respond(c, created, gin.H{"message": "Alert created successfully"})
}

// DeactivateCustomAlert soft-deletes an alert by id.
func (h *Handler) DeactivateCustomAlert(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "alert id is required", nil))
		return
	}
	if err := h.customAlerts.Deactivate(c.Request.Context(), id); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.logger.Info("custom alert deactivated", "alert", id, "actor", actor(c))
	h.respond(c, nil, gin.H{"message": "Alert deactivated successfully"})
}

// ListOverrides returns the override log, newest first.
func (h *Handler) ListOverrides(c *gin.Context) {
	items, err := h.overrides.List(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.respond(c, items, nil)
}

// SaveOverride records a manual beach update.
func (h *Handler) SaveOverride(c *gin.Context) {
	var req override.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}
	saved, err := h.overrides.Save(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.logger.Info("beach override saved", "beach", saved.BeachID, "actor", actor(c))
	h.respond(c, saved, gin.H{"message": "Beach update saved successfully"})
}

// ResetOverride drops every override for a beach.
func (h *Handler) ResetOverride(c *gin.Context) {
	beachID := strings.TrimSpace(c.Query("beachId"))
	if beachID == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "beachId is required", nil))
		return
	}
	removed, err := h.overrides.Reset(c.Request.Context(), beachID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.logger.Info("beach override reset", "beach", beachID, "removed", removed, "actor", actor(c))
	h.respond(c, nil, gin.H{
		"message":      fmt.Sprintf("Reset %s to automatic data", beachID),
		"removedCount": removed,
	})
}

// Login issues an admin session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.cookie.set(c, resp.Token, h.authSvc.SessionTTL())
	h.respond(c, resp, nil)
}

// Logout clears the admin session cookie.
func (h *Handler) Logout(c *gin.Context) {
	h.cookie.clear(c)
	h.respond(c, nil, gin.H{"message": "Logged out"})
}
