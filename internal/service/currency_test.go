package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestConverter(t *testing.T, handler http.HandlerFunc) *CurrencyConverter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cc := NewCurrencyConverter(srv.URL, nil, time.Minute)
	cc.Client = srv.Client()
	return cc
}

func TestConvertHomeCurrencyIsIdentity(t *testing.T) {
	// The provider must not be contacted for PLN or empty targets.
	cc := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected provider request")
	})

	assert.Equal(t, int64(123_456), cc.Convert(context.Background(), 123_456, "PLN"))
	assert.Equal(t, int64(123_456), cc.Convert(context.Background(), 123_456, ""))
	assert.Equal(t, int64(123_456), cc.Convert(context.Background(), 123_456, " pln "))
}

func TestConvertUsesProviderRate(t *testing.T) {
	cc := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"PLN","rates":{"USD":0.25,"EUR":0.23}}`))
	})

	assert.Equal(t, int64(25_000), cc.Convert(context.Background(), 100_000, "USD"))
	assert.Equal(t, int64(23_000), cc.Convert(context.Background(), 100_000, "eur"), "code lookup is case-insensitive")
}

func TestConvertRoundsToNearestMinorUnit(t *testing.T) {
	cc := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"USD":0.2501}}`))
	})

	// 999 * 0.2501 = 249.8499 -> 250
	assert.Equal(t, int64(250), cc.Convert(context.Background(), 999, "USD"))
}

func TestConvertFallsBackOnProviderError(t *testing.T) {
	cc := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Equal(t, int64(100_000), cc.Convert(context.Background(), 100_000, "USD"))
}

func TestConvertFallsBackOnMalformedPayload(t *testing.T) {
	cc := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	assert.Equal(t, int64(100_000), cc.Convert(context.Background(), 100_000, "USD"))
}

func TestConvertFallsBackOnUnknownCode(t *testing.T) {
	cc := newTestConverter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"USD":0.25}}`))
	})

	assert.Equal(t, int64(100_000), cc.Convert(context.Background(), 100_000, "XXX"))
}

func TestConvertFallsBackWhenProviderUnreachable(t *testing.T) {
	cc := NewCurrencyConverter("http://127.0.0.1:1", nil, time.Minute)
	cc.Client = &http.Client{Timeout: 200 * time.Millisecond}

	assert.Equal(t, int64(100_000), cc.Convert(context.Background(), 100_000, "USD"))
}
