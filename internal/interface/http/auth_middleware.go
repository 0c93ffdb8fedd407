package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/beachsafety/internal/domain/auth"
	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

// authMiddleware admits requests carrying a valid admin session, read from
// the session cookie or a Bearer header.
func authMiddleware(svc auth.Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "admin session required", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case apperrors.IsCode(err, apperrors.CodeInvalidToken):
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, apperrors.MessageOf(err), err))
			case apperrors.IsCode(err, apperrors.CodeAuthNotConfigured):
				abortWithError(c, fromAppError(err))
			default:
				abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeAuthError, "session check failed", err))
			}
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
