package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/cache"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/presets"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/distance"
	apperrors "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/tracing"
)

// Options configures a Handler. Cache, Tracker, Metrics and Tracer are
// optional.
type Options struct {
	Presets         presets.Store
	Cache           *cache.Cache
	Tracker         analytics.Tracker
	Metrics         *metrics.Metrics
	Tracer          *tracing.Tracer
	DefaultStrategy similarity.Strategy
	DefaultMetric   similarity.Metric
	MaxTextBytes    int
}

type Handler struct {
	presets         presets.Store
	cache           *cache.Cache
	tracker         analytics.Tracker
	metrics         *metrics.Metrics
	tracer          *tracing.Tracer
	defaultStrategy similarity.Strategy
	defaultMetric   similarity.Metric
	maxTextBytes    int
	logger          *slog.Logger
}

// DefaultMaxTextBytes applies when Options.MaxTextBytes is not positive.
const DefaultMaxTextBytes = 1 << 20

// A JSON string escapes a control byte as \u00XX, six bytes per input byte.
const (
	maxEscapeExpansion = 6
	bodyOverhead       = 4096
)

func New(opts Options) *Handler {
	if opts.MaxTextBytes <= 0 {
		opts.MaxTextBytes = DefaultMaxTextBytes
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.NewTracer(false)
	}
	return &Handler{
		presets:         opts.Presets,
		cache:           opts.Cache,
		tracker:         opts.Tracker,
		metrics:         opts.Metrics,
		tracer:          tracer,
		defaultStrategy: opts.DefaultStrategy,
		defaultMetric:   opts.DefaultMetric,
		maxTextBytes:    opts.MaxTextBytes,
		logger:          logger.WithComponent("compare-handler"),
	}
}

// CompareRequest is the body of POST /api/v1/compare. Each side is given
// either inline text or a preset name.
type CompareRequest struct {
	TextA    *string `json:"text_a,omitempty"`
	PresetA  string  `json:"preset_a,omitempty"`
	TextB    *string `json:"text_b,omitempty"`
	PresetB  string  `json:"preset_b,omitempty"`
	Strategy string  `json:"strategy,omitempty"`
	Metric   string  `json:"metric,omitempty"`
}

// CompareResponse is the body returned for a successful comparison.
type CompareResponse struct {
	Score          float64             `json:"score"`
	Display        string              `json:"display"`
	Label          string              `json:"label"`
	Strategy       similarity.Strategy `json:"strategy"`
	Metric         similarity.Metric   `json:"metric"`
	IsDistance     bool                `json:"is_distance"`
	VocabularySize int                 `json:"vocabulary_size"`
	TokensA        int                 `json:"tokens_a"`
	TokensB        int                 `json:"tokens_b"`
	Cached         bool                `json:"cached"`
	LatencyMs      float64             `json:"latency_ms"`
}

// Compare handles POST /api/v1/compare.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "compare", middleware.GetRequestID(r.Context()))
	defer h.tracer.Finish(span)
	log := logger.FromContext(ctx)

	event := analytics.ComparisonEvent{
		RequestID: middleware.GetRequestID(ctx),
		Timestamp: start.UTC(),
	}
	res, cached, err := h.compare(ctx, w, r, &event)
	latency := time.Since(start)
	event.LatencyMicros = latency.Microseconds()
	event.Outcome = outcomeOf(err)
	span.SetAttr("outcome", string(event.Outcome))
	h.observe(event, latency)

	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("comparison failed", "strategy", event.Strategy, "metric", event.Metric, "error", err)
		} else {
			log.Info("comparison rejected", "status", status, "error", err)
		}
		h.writeError(w, status, apperrors.Message(err))
		return
	}

	summary := report.Summarize(res)
	log.Info("comparison completed",
		"strategy", res.Strategy,
		"metric", res.Metric,
		"score", res.Score,
		"vocabulary_size", res.VocabularySize,
		"cached", cached,
		"latency_ms", float64(latency.Microseconds())/1000,
	)
	h.writeJSON(w, http.StatusOK, CompareResponse{
		Score:          res.Score,
		Display:        summary.Display,
		Label:          summary.Label,
		Strategy:       res.Strategy,
		Metric:         res.Metric,
		IsDistance:     res.Metric.IsDistance(),
		VocabularySize: res.VocabularySize,
		TokensA:        res.TokensA,
		TokensB:        res.TokensB,
		Cached:         cached,
		LatencyMs:      float64(latency.Microseconds()) / 1000,
	})
}

func (h *Handler) compare(ctx context.Context, w http.ResponseWriter, r *http.Request, event *analytics.ComparisonEvent) (*similarity.Result, bool, error) {
	body, err := h.decode(w, r)
	if err != nil {
		return nil, false, err
	}
	event.Strategy, event.Metric = body.Strategy, body.Metric

	req, err := h.resolve(ctx, body)
	if err != nil {
		return nil, false, err
	}
	event.Strategy, event.Metric = req.Strategy.String(), req.Metric.String()

	compute := func() (*similarity.Result, error) {
		_, span := tracing.StartChild(ctx, "compute")
		defer span.End()
		res, err := similarity.Analyze(req)
		if err != nil {
			return nil, err
		}
		span.SetAttr("vocabulary_size", res.VocabularySize)
		logger.FromContext(ctx).Debug("vectors built",
			"vector_a", res.VectorA,
			"vector_b", res.VectorB,
		)
		return res, nil
	}

	var res *similarity.Result
	cached := false
	if h.cache != nil {
		_, span := tracing.StartChild(ctx, "cache")
		res, cached, err = h.cache.GetOrCompute(ctx, req, compute)
		span.SetAttr("hit", cached)
		span.End()
	} else {
		res, err = compute()
	}
	if err != nil {
		return nil, false, err
	}
	event.Score = res.Score
	event.VocabularySize = res.VocabularySize
	event.TokensA, event.TokensB = res.TokensA, res.TokensB
	event.CacheHit = cached
	return res, cached, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CompareRequest, error) {
	var body CompareRequest
	limit := int64(2*maxEscapeExpansion*h.maxTextBytes + bodyOverhead)
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return body, apperrors.Newf(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge,
				"request body exceeds %d bytes", tooLarge.Limit)
		}
		return body, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid request body: %v", err)
	}
	return body, nil
}

func (h *Handler) resolve(ctx context.Context, body CompareRequest) (similarity.Request, error) {
	_, span := tracing.StartChild(ctx, "resolve")
	defer span.End()

	req := similarity.Request{Strategy: h.defaultStrategy, Metric: h.defaultMetric}
	var err error
	if body.Strategy != "" {
		if req.Strategy, err = similarity.ParseStrategy(body.Strategy); err != nil {
			return req, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error())
		}
	}
	if body.Metric != "" {
		if req.Metric, err = similarity.ParseMetric(body.Metric); err != nil {
			return req, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error())
		}
	}
	if req.TextA, err = h.side(ctx, "a", body.TextA, body.PresetA); err != nil {
		return req, err
	}
	if req.TextB, err = h.side(ctx, "b", body.TextB, body.PresetB); err != nil {
		return req, err
	}
	return req, nil
}

func (h *Handler) side(ctx context.Context, name string, text *string, preset string) (string, error) {
	switch {
	case text != nil && preset != "":
		return "", apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"text_%s and preset_%s are mutually exclusive", name, name)
	case text != nil:
		if len(*text) > h.maxTextBytes {
			return "", apperrors.Newf(apperrors.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge,
				"text_%s exceeds %d bytes", name, h.maxTextBytes)
		}
		return *text, nil
	case preset != "":
		p, err := h.presets.Get(ctx, preset)
		if err != nil {
			return "", err
		}
		return p.Body, nil
	default:
		return "", apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"one of text_%s or preset_%s is required", name, name)
	}
}

func (h *Handler) observe(event analytics.ComparisonEvent, latency time.Duration) {
	if h.tracker != nil {
		h.tracker.Track(event)
	}
	if h.metrics == nil {
		return
	}
	strategy, metric := event.Strategy, event.Metric
	if event.Outcome == analytics.OutcomeInvalidInput {
		strategy, metric = "invalid", "invalid"
	}
	if strategy == "" {
		strategy = "none"
	}
	if metric == "" {
		metric = "none"
	}
	h.metrics.ComparisonsTotal.WithLabelValues(strategy, metric, string(event.Outcome)).Inc()
	if event.Outcome != analytics.OutcomeOK {
		return
	}
	cacheStatus := "miss"
	if event.CacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else if h.cache != nil {
		h.metrics.CacheMissesTotal.Inc()
	} else {
		cacheStatus = "disabled"
	}
	h.metrics.ComparisonLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.VocabularySize.Observe(float64(event.VocabularySize))
}

func outcomeOf(err error) analytics.Outcome {
	switch {
	case err == nil:
		return analytics.OutcomeOK
	case errors.Is(err, apperrors.ErrPresetNotFound):
		return analytics.OutcomeNotFound
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrPayloadTooLarge):
		return analytics.OutcomeInvalidInput
	case errors.Is(err, distance.ErrInvariantViolation):
		return analytics.OutcomeInvariantViolation
	default:
		return analytics.OutcomeError
	}
}

// ListPresets handles GET /api/v1/presets.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	list, err := h.presets.List(r.Context())
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), apperrors.Message(err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"presets": presets.Names(list),
		"count":   len(list),
	})
}

// GetPreset handles GET /api/v1/presets/{name}.
func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := h.presets.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), apperrors.Message(err))
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// Selectors handles GET /api/v1/selectors.
func (h *Handler) Selectors(w http.ResponseWriter, r *http.Request) {
	strategies := make([]string, 0, len(similarity.Strategies))
	for _, s := range similarity.Strategies {
		strategies = append(strategies, s.String())
	}
	metricNames := make([]string, 0, len(similarity.Metrics))
	for _, m := range similarity.Metrics {
		metricNames = append(metricNames, m.String())
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"strategies":       strategies,
		"metrics":          metricNames,
		"default_strategy": h.defaultStrategy,
		"default_metric":   h.defaultMetric,
		"default_label":    report.Describe(h.defaultStrategy, h.defaultMetric),
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.cache.Stats())
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "remote_keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
