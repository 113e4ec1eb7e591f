package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/modelhub/inventory-server/internal/config"
	"github.com/modelhub/inventory-server/internal/inventory/handler"
	"github.com/modelhub/inventory-server/internal/inventory/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func okPing(context.Context) error { return nil }

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func readyBody(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]bool) {
	t.Helper()
	var body struct {
		Status string          `json:"status"`
		Deps   map[string]bool `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Status, body.Deps
}

func TestRouterServesInventoryAndOpsRoutes(t *testing.T) {
	r := NewRouter(Deps{Config: &config.Config{}, Service: service.NewMemoryService(), Ready: okPing})

	w := get(t, r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, handler.LivenessText, w.Body.String())

	w = get(t, r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())

	w = get(t, r, "/models")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())

	require.Equal(t, http.StatusOK, get(t, r, "/metrics").Code)
	require.Equal(t, http.StatusOK, get(t, r, "/swagger/doc.json").Code)

	// no image store, no upload route
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/models/64b7f1c2a1b2c3d4e5f60718/image", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterSendsCORSHeaders(t *testing.T) {
	r := NewRouter(Deps{Config: &config.Config{}, Service: service.NewMemoryService(), Ready: okPing})
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Origin", "http://dashboard.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestReadyReflectsDatabase(t *testing.T) {
	r := NewRouter(Deps{Config: &config.Config{}, Service: service.NewMemoryService(), Ready: okPing})
	w := get(t, r, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	status, deps := readyBody(t, w)
	require.Equal(t, "ready", status)
	require.True(t, deps["mongodb"])
	require.False(t, deps["images"])

	down := func(context.Context) error { return errors.New("server selection timeout") }
	r = NewRouter(Deps{Config: &config.Config{}, Service: service.NewMemoryService(), Ready: down})
	w = get(t, r, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	status, deps = readyBody(t, w)
	require.Equal(t, "not_ready", status)
	require.False(t, deps["mongodb"])
}

func TestReadyChecksRedisWhenLimiterUsesIt(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RPS: 100, Burst: 100, UseRedis: true, WindowSeconds: 1}}
	r := NewRouter(Deps{Config: cfg, Service: service.NewMemoryService(), Ready: okPing, Redis: client})

	w := get(t, r, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	_, deps := readyBody(t, w)
	require.True(t, deps["redis"])

	mr.Close()
	w = get(t, r, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouterAppliesMemoryRateLimit(t *testing.T) {
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}}
	r := NewRouter(Deps{Config: cfg, Service: service.NewMemoryService(), Ready: okPing})

	require.Equal(t, http.StatusOK, get(t, r, "/models").Code)
	require.Equal(t, http.StatusOK, get(t, r, "/models").Code)
	require.Equal(t, http.StatusTooManyRequests, get(t, r, "/models").Code)
	require.Equal(t, http.StatusOK, get(t, r, "/health").Code)
}
