// Package analytics records what the comparison API is asked to do. Events
// are streamed through Kafka when it is configured and folded into
// in-memory statistics served on the analytics endpoint.
package analytics

import "time"

// Outcome classifies how a comparison request ended.
type Outcome string

const (
	OutcomeOK                 Outcome = "ok"
	OutcomeInvalidInput       Outcome = "invalid_input"
	OutcomeNotFound           Outcome = "not_found"
	OutcomeInvariantViolation Outcome = "invariant_violation"
	OutcomeError              Outcome = "error"
)

// ComparisonEvent describes a single comparison request.
type ComparisonEvent struct {
	RequestID      string    `json:"request_id"`
	Strategy       string    `json:"strategy"`
	Metric         string    `json:"metric"`
	Outcome        Outcome   `json:"outcome"`
	Score          float64   `json:"score"`
	VocabularySize int       `json:"vocabulary_size"`
	TokensA        int       `json:"tokens_a"`
	TokensB        int       `json:"tokens_b"`
	CacheHit       bool      `json:"cache_hit"`
	LatencyMicros  int64     `json:"latency_us"`
	Timestamp      time.Time `json:"timestamp"`
}

// Tracker accepts comparison events without blocking the caller.
type Tracker interface {
	Track(event ComparisonEvent)
}
