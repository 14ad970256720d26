package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/prospector/internal/api"
	mw "github.com/coldreach/prospector/internal/api/middleware"
	"github.com/coldreach/prospector/internal/cache"
)

// --- stub cache that always rejects (rate limit exhausted) ---

type exhaustedCache struct{}

func (c *exhaustedCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
func (c *exhaustedCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *exhaustedCache) Delete(_ context.Context, _ string) error { return nil }
func (c *exhaustedCache) Ping(_ context.Context) error             { return nil }
func (c *exhaustedCache) SetJobStatus(_ context.Context, _, _ string, _ time.Duration) error {
	return nil
}
func (c *exhaustedCache) GetJobStatus(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}
func (c *exhaustedCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1000, nil
}

var _ cache.Cache = (*exhaustedCache)(nil)

// --- router tests ---

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func newTestRouter(rl *mw.RateLimit) http.Handler {
	ok := okHandler()
	return api.NewRouter(api.Dependencies{
		RateLimit: rl,

		HealthHandler: ok,

		SearchHandler:      ok,
		StopHandler:        ok,
		JobResultsHandler:  ok,
		AcknowledgeHandler: ok,
		DismissHandler:     ok,

		HistoryHandler:      ok,
		ClearHistoryHandler: ok,
		LoadHistoryHandler:  ok,
		HistoryCSVHandler:   ok,

		ExportCSVHandler: ok,
		ImportHandler:    ok,
	})
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireSession(t *testing.T) {
	router := newTestRouter(nil)

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/prospector/search"},
		{"POST", "/api/v1/prospector/jobs/j1/stop"},
		{"GET", "/api/v1/prospector/jobs/j1/results"},
		{"POST", "/api/v1/prospector/acknowledge"},
		{"DELETE", "/api/v1/prospector/message"},
		{"GET", "/api/v1/prospector/history"},
		{"DELETE", "/api/v1/prospector/history"},
		{"POST", "/api/v1/prospector/history/s1/load"},
		{"GET", "/api/v1/prospector/history/s1/csv"},
		{"GET", "/api/v1/prospector/export/csv"},
		{"POST", "/api/v1/prospector/import"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_SessionReachesHandlers(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/prospector/history", nil)
	req.Header.Set("Authorization", "Bearer tok_router")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RateLimitApplies(t *testing.T) {
	router := newTestRouter(mw.NewRateLimit(&exhaustedCache{}, 60))

	req := httptest.NewRequest("GET", "/api/v1/prospector/history", nil)
	req.Header.Set("Authorization", "Bearer tok_limited")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_RateLimitSkipsHealth(t *testing.T) {
	router := newTestRouter(mw.NewRateLimit(&exhaustedCache{}, 60))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
