package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/buttonmarket/internal/adapter/http/middleware"
	"github.com/iho/buttonmarket/internal/infrastructure/config"
)

func demoConfig() *config.Config {
	return &config.Config{
		StoreDriver:         config.StoreDriverMemory,
		RateLimitRPS:        100,
		RateLimitBurst:      100,
		IdempotencyTTL:      time.Hour,
		InitialGrantButtons: 100,
		SweepInterval:       time.Minute,
		SweepBatchSize:      10,
		PayoutInterval:      time.Minute,
		PayoutBatchSize:     10,
		PayoutWorkers:       1,
		PayoutMaxAttempts:   2,
		OutboxInterval:      time.Minute,
		OutboxBatchSize:     10,
	}
}

func TestBuildApp_Demo(t *testing.T) {
	a, err := buildApp(context.Background(), demoConfig(), zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memory (demo)")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/alice/open", nil)
	req.Header.Set(middleware.AccountIDHeader, "alice")
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "100 buttons")

	results, err := a.sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuildApp_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := demoConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	open := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/bob/open", nil)
		req.Header.Set(middleware.AccountIDHeader, "bob")
		req.Header.Set(middleware.IdempotencyKeyHeader, "open-bob")
		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, req)
		return rec
	}

	first := open()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	replay := open()
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replay"))
	assert.Equal(t, first.Body.String(), replay.Body.String())

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"redis":"ok"`))
}

func TestBuildApp_BadRedisURL(t *testing.T) {
	cfg := demoConfig()
	cfg.RedisURL = "not a url"

	_, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	assert.ErrorContains(t, err, "connect to redis")
}
