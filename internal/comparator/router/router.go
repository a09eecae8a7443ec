// Package router wires the comparison API routes and applies the middleware
// chain.
package router

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/handler"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/ratelimit"
)

// Deps holds what the router mounts. Limiter and Metrics may be nil.
type Deps struct {
	Handler   *handler.Handler
	Analytics *analytics.Handler
	Health    *health.Checker
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Metrics
	Timeout   time.Duration
}

// New builds the service's HTTP handler.
//
// Route table:
//
//	POST   /api/v1/compare            → compare two texts
//	GET    /api/v1/selectors          → available strategies and metrics
//	GET    /api/v1/presets            → list preset names
//	GET    /api/v1/presets/{name}     → preset body
//	GET    /api/v1/cache/stats        → result cache statistics
//	POST   /api/v1/cache/invalidate   → drop cached results
//	GET    /api/v1/analytics          → aggregated comparison statistics
//	GET    /health/live               → liveness
//	GET    /health/ready              → readiness
//
// Middleware chain (outermost first):
//
//	RequestID → Metrics → RateLimit → Timeout → mux
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", d.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", d.Health.ReadyHandler())

	mux.HandleFunc("POST /api/v1/compare", d.Handler.Compare)
	mux.HandleFunc("GET /api/v1/selectors", d.Handler.Selectors)
	mux.HandleFunc("GET /api/v1/presets", d.Handler.ListPresets)
	mux.HandleFunc("GET /api/v1/presets/{name}", d.Handler.GetPreset)

	mux.HandleFunc("GET /api/v1/cache/stats", d.Handler.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", d.Handler.CacheInvalidate)

	if d.Analytics != nil {
		mux.HandleFunc("GET /api/v1/analytics", d.Analytics.Stats)
	}

	var chain http.Handler = mux
	if d.Timeout > 0 {
		chain = middleware.Timeout(d.Timeout)(chain)
	}
	if d.Limiter != nil {
		chain = middleware.RateLimit(d.Limiter, d.Metrics)(chain)
	}
	if d.Metrics != nil {
		chain = middleware.Metrics(d.Metrics)(chain)
	}
	chain = middleware.RequestID(chain)

	return chain
}
