package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
	"github.com/licensedesk/revenue-api/internal/utils"
)

// stubStore serves a single employee account from memory.
type stubStore struct {
	employee model.Employee
}

func (s *stubStore) GetByLogin(_ context.Context, login string) (model.Employee, error) {
	if login != s.employee.Login {
		return model.Employee{}, repository.ErrNotFound
	}
	return s.employee, nil
}

func newStubStore(t *testing.T, login, password, role string) *stubStore {
	t.Helper()
	hash, err := utils.HashPassword(password, 4) // min cost keeps the test fast
	require.NoError(t, err)
	return &stubStore{employee: model.Employee{ID: 1, Login: login, PasswordHash: hash, Role: role}}
}

func basicHeader(login, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(login+":"+password))
}

// serve runs a request through BasicAuth chained to a handler that echoes
// the context values the middleware is expected to set.
func serve(t *testing.T, store CredentialStore, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := BasicAuth(store)(func(c echo.Context) error {
		role, _ := c.Get("role").(string)
		return c.String(http.StatusOK, role)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestBasicAuthValidCredentials(t *testing.T) {
	store := newStubStore(t, "admin", "s3cret", model.RoleAdmin)

	rec := serve(t, store, "/api/clients", basicHeader("admin", "s3cret"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleAdmin, rec.Body.String(), "role stored in context")
}

func TestBasicAuthRejects(t *testing.T) {
	store := newStubStore(t, "admin", "s3cret", model.RoleAdmin)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Bearer abc"},
		{name: "bad base64", header: "Basic %%%"},
		{name: "no colon in credentials", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("adminonly"))},
		{name: "unknown login", header: basicHeader("ghost", "s3cret")},
		{name: "wrong password", header: basicHeader("admin", "nope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, store, "/api/clients", tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, basicRealm, rec.Header().Get(echo.HeaderWWWAuthenticate))
		})
	}
}

func TestBasicAuthSkipsHealthAndDocs(t *testing.T) {
	store := newStubStore(t, "admin", "s3cret", model.RoleAdmin)

	for _, path := range []string{"/healthz", "/swagger/index.html", "/favicon.ico"} {
		rec := serve(t, store, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestParseBasic(t *testing.T) {
	login, password, ok := parseBasic(basicHeader("user", "pa:ss"))
	require.True(t, ok)
	assert.Equal(t, "user", login)
	assert.Equal(t, "pa:ss", password, "password may contain colons")

	_, _, ok = parseBasic(basicHeader("", "secret"))
	assert.False(t, ok, "empty login is rejected")
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	run := func(role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/clients/1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}
		require.NoError(t, RequireRole(model.RoleAdmin)(next)(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, run(model.RoleStandard).Code)

	rec := run("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing role never passed the gate")
	assert.Equal(t, basicRealm, rec.Header().Get(echo.HeaderWWWAuthenticate))
}
