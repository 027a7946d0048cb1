package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensedesk/revenue-api/internal/config"
)

func TestIdentityPrefersAuthenticatedLogin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.RemoteAddr = "203.0.113.5:4242"
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "203.0.113.5", identity(c), "anonymous requests key by IP")

	// BasicAuth stores the login before the limiter runs; from then on the
	// limit follows the account, not the address.
	c.Set("login", "admin")
	assert.Equal(t, "admin", identity(c))
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := RateLimit(config.RateLimitConfig{Enabled: false}, nil)
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
