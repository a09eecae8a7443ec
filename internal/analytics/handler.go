package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
)

// PipelineStats reports the health of the Kafka event pipeline.
type PipelineStats struct {
	Published int64 `json:"published"`
	Dropped   int64 `json:"dropped"`
}

type statsResponse struct {
	Stats
	Pipeline *PipelineStats `json:"pipeline,omitempty"`
}

// Handler serves aggregated statistics over HTTP.
type Handler struct {
	aggregator *Aggregator
	collector  *Collector
	logger     *slog.Logger
}

// NewHandler creates a Handler. collector is nil when events bypass Kafka.
func NewHandler(aggregator *Aggregator, collector *Collector) *Handler {
	return &Handler{
		aggregator: aggregator,
		collector:  collector,
		logger:     logger.WithComponent("analytics-handler"),
	}
}

// Stats handles GET /api/v1/analytics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Stats: h.aggregator.Stats()}
	if h.collector != nil {
		resp.Pipeline = &PipelineStats{
			Published: h.collector.Published(),
			Dropped:   h.collector.Dropped(),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
