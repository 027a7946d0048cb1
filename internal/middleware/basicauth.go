// Package middleware provides shared request processing for handlers:
// the HTTP Basic access gate, the role guard and the Redis rate limiter.
package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/utils"
)

// basicRealm is sent with every challenge response.
const basicRealm = `Basic realm="Revenue Recognition API"`

// skipPaths are served without credentials: health probes, API docs and
// the browser favicon.
var skipPaths = []string{"/healthz", "/swagger", "/favicon.ico"}

// CredentialStore looks up the employee account for a login. Implemented
// by repository.EmployeeRepo; declared here so the middleware can be
// tested with a stub.
type CredentialStore interface {
	GetByLogin(ctx context.Context, login string) (model.Employee, error)
}

// BasicAuth returns a middleware that authenticates requests with HTTP
// Basic credentials against stored bcrypt hashes. On success it stores the
// employee id, login and role in the context for the role guard and
// handlers. Missing, malformed or invalid credentials receive a 401 with a
// WWW-Authenticate challenge.
func BasicAuth(store CredentialStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range skipPaths {
				if strings.HasPrefix(path, p) {
					return next(c)
				}
			}

			login, password, ok := parseBasic(c.Request().Header.Get("Authorization"))
			if !ok {
				return challenge(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			employee, err := store.GetByLogin(ctx, login)
			if err != nil {
				return challenge(c)
			}
			if !utils.VerifyPassword(employee.PasswordHash, password) {
				return challenge(c)
			}

			c.Set("employee_id", employee.ID)
			c.Set("login", employee.Login)
			c.Set("role", employee.Role)
			return next(c)
		}
	}
}

// parseBasic extracts the login and password from an Authorization header.
// It accepts only the Basic scheme and a well-formed base64 "login:password"
// parameter.
func parseBasic(header string) (login, password string, ok bool) {
	const scheme = "Basic "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(scheme):]))
	if err != nil {
		return "", "", false
	}
	login, password, ok = strings.Cut(string(raw), ":")
	if !ok || login == "" {
		return "", "", false
	}
	return login, password, true
}

func challenge(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, basicRealm)
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
