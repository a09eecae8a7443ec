// Package integration exercises the comparison API through the full router
// and middleware chain. External dependencies are replaced by their
// in-process equivalents; tests that need PostgreSQL skip when it is absent.
//
// Run with:
//
//	go test -v ./test/integration/...
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/cache"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/handler"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/router"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/presets"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/ratelimit"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type server struct {
	*httptest.Server
	aggregator *analytics.Aggregator
}

func newServer(t *testing.T, store presets.Store, requestsPerMinute int) server {
	t.Helper()
	resultCache, err := cache.New(config.CacheConfig{Enabled: true, LocalSize: 64, TTL: time.Minute}, nil)
	require.NoError(t, err)

	aggregator := analytics.NewAggregator()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	limiter := ratelimit.New(requestsPerMinute, time.Minute)
	t.Cleanup(limiter.Close)

	checker := health.NewChecker()
	checker.Register("presets", health.PingCheck(func(ctx context.Context) error {
		_, err := store.List(ctx)
		return err
	}))

	h := handler.New(handler.Options{
		Presets:         store,
		Cache:           resultCache,
		Tracker:         aggregator,
		Metrics:         m,
		DefaultStrategy: similarity.Frequency,
		DefaultMetric:   similarity.Cosine,
		MaxTextBytes:    4096,
	})
	srv := httptest.NewServer(router.New(router.Deps{
		Handler:   h,
		Analytics: analytics.NewHandler(aggregator, nil),
		Health:    checker,
		Limiter:   limiter,
		Metrics:   m,
		Timeout:   5 * time.Second,
	}))
	t.Cleanup(srv.Close)
	return server{Server: srv, aggregator: aggregator}
}

func embeddedStore(t *testing.T) presets.Store {
	t.Helper()
	store, err := presets.NewEmbedded()
	require.NoError(t, err)
	return store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCompareThroughRouter(t *testing.T) {
	srv := newServer(t, embeddedStore(t), 1000)

	resp := postJSON(t, srv.URL+"/api/v1/compare", map[string]string{
		"preset_a": "Paragraph_A",
		"preset_b": "Paragraph_B",
		"strategy": "frequency",
		"metric":   "cosine",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	related := decode[handler.CompareResponse](t, resp.Body)
	assert.Greater(t, related.Score, 0.5)
	assert.LessOrEqual(t, related.Score, 1.0)

	resp = postJSON(t, srv.URL+"/api/v1/compare", map[string]string{
		"preset_a": "Paragraph_A",
		"preset_b": "Paragraph_D",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	unrelated := decode[handler.CompareResponse](t, resp.Body)
	assert.Less(t, unrelated.Score, related.Score)
}

func TestCompareIsSymmetricAcrossSelectors(t *testing.T) {
	srv := newServer(t, embeddedStore(t), 1000)
	for _, s := range similarity.Strategies {
		for _, m := range similarity.Metrics {
			ab := decode[handler.CompareResponse](t, postJSON(t, srv.URL+"/api/v1/compare", map[string]string{
				"preset_a": "Paragraph_B", "preset_b": "Paragraph_C", "strategy": s.String(), "metric": m.String(),
			}).Body)
			ba := decode[handler.CompareResponse](t, postJSON(t, srv.URL+"/api/v1/compare", map[string]string{
				"preset_a": "Paragraph_C", "preset_b": "Paragraph_B", "strategy": s.String(), "metric": m.String(),
			}).Body)
			assert.InDelta(t, ab.Score, ba.Score, 1e-9, "%s/%s", s, m)
			assert.Equal(t, ab.VocabularySize, ba.VocabularySize)
		}
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newServer(t, embeddedStore(t), 1000)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/presets", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.RequestIDHeader, "trace-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "trace-123", resp.Header.Get(middleware.RequestIDHeader))
}

func TestPresetRoutes(t *testing.T) {
	srv := newServer(t, embeddedStore(t), 1000)

	resp := get(t, srv.URL+"/api/v1/presets/Paragraph_B")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[presets.Preset](t, resp.Body)
	assert.Equal(t, "Paragraph_B", p.Name)

	resp = get(t, srv.URL+"/api/v1/presets/Paragraph_X")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimitAppliesToAPIButNotHealth(t *testing.T) {
	srv := newServer(t, embeddedStore(t), 2)

	for range 2 {
		assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/v1/selectors").StatusCode)
	}
	resp := get(t, srv.URL+"/api/v1/selectors")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/health/live").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/health/ready").StatusCode)
}

func TestAnalyticsReflectsTraffic(t *testing.T) {
	srv := newServer(t, embeddedStore(t), 1000)
	body := map[string]string{"text_a": "alpha beta", "text_b": "beta gamma", "metric": "match"}

	postJSON(t, srv.URL+"/api/v1/compare", body)
	postJSON(t, srv.URL+"/api/v1/compare", body)
	postJSON(t, srv.URL+"/api/v1/compare", map[string]string{"text_a": "x", "text_b": "y", "metric": "manhattan"})

	stats := decode[analytics.Stats](t, get(t, srv.URL+"/api/v1/analytics").Body)
	assert.EqualValues(t, 3, stats.TotalComparisons)
	assert.EqualValues(t, 1, stats.Failures)
	assert.EqualValues(t, 1, stats.CacheHits)
	assert.EqualValues(t, 2, stats.ByMetric["match-ratio"])
	assert.InDelta(t, 1.0/3.0, stats.MeanScore["match-ratio"], 1e-9)
}

func TestCacheRoutes(t *testing.T) {
	srv := newServer(t, embeddedStore(t), 1000)
	postJSON(t, srv.URL+"/api/v1/compare", map[string]string{"text_a": "a", "text_b": "a"})

	stats := decode[cache.Stats](t, get(t, srv.URL+"/api/v1/cache/stats").Body)
	assert.Equal(t, 1, stats.LocalEntries)

	resp := postJSON(t, srv.URL+"/api/v1/cache/invalidate", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stats = decode[cache.Stats](t, get(t, srv.URL+"/api/v1/cache/stats").Body)
	assert.Zero(t, stats.LocalEntries)
}
