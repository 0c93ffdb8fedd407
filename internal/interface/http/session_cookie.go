package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie describes the admin session cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (s SessionCookie) set(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.Name, token, int(ttl.Seconds()), "/", "", s.Secure, true)
}

func (s SessionCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}
