package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestValidCurrency(t *testing.T) {
	for _, code := range []string{"PLN", "USD", "EUR", "CZK"} {
		assert.True(t, ValidCurrency(code), code)
	}
	assert.False(t, ValidCurrency("XXX"))
	assert.False(t, ValidCurrency("usd"), "lookup expects upper case")
	assert.False(t, ValidCurrency(""))
}

func TestIdentifierPatterns(t *testing.T) {
	assert.True(t, peselPattern.MatchString("85010112345"))
	assert.False(t, peselPattern.MatchString("8501011234"), "ten digits is too short")
	assert.False(t, peselPattern.MatchString("85010112345a"))

	assert.True(t, krsPattern.MatchString("0000123456"))
	assert.False(t, krsPattern.MatchString("123456"))
	assert.False(t, krsPattern.MatchString("00001234567"), "eleven digits is too long")
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("anna@example.com"))
	assert.False(t, validEmail("annaexample.com"))
	assert.False(t, validEmail("@example.com"))
	assert.False(t, validEmail("anna@"))
}

func TestParamID(t *testing.T) {
	e := echo.New()

	ctxWith := func(raw string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)
		return c
	}

	id, ok := paramID(ctxWith("42"), "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, ok := paramID(ctxWith(raw), "id")
		assert.False(t, ok, raw)
	}
}
