package analytics

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/kafka"
)

// latencyWindow bounds how many recent latencies feed the percentiles.
const latencyWindow = 10000

// Stats summarises the comparisons seen since the aggregator started.
type Stats struct {
	TotalComparisons     int64              `json:"total_comparisons"`
	Failures             int64              `json:"failures"`
	CacheHits            int64              `json:"cache_hits"`
	CacheMisses          int64              `json:"cache_misses"`
	ByStrategy           map[string]int64   `json:"by_strategy"`
	ByMetric             map[string]int64   `json:"by_metric"`
	ByOutcome            map[string]int64   `json:"by_outcome"`
	MeanScore            map[string]float64 `json:"mean_score_by_metric"`
	AvgLatencyMs         float64            `json:"avg_latency_ms"`
	P50LatencyMs         float64            `json:"p50_latency_ms"`
	P95LatencyMs         float64            `json:"p95_latency_ms"`
	P99LatencyMs         float64            `json:"p99_latency_ms"`
	ComparisonsPerMinute float64            `json:"comparisons_per_minute"`
}

type scoreSum struct {
	sum   float64
	count int64
}

// Aggregator folds ComparisonEvents into Stats. It implements Tracker so it
// can be fed directly when Kafka is disabled.
type Aggregator struct {
	mu         sync.Mutex
	total      int64
	failures   int64
	cacheHits  int64
	byStrategy map[string]int64
	byMetric   map[string]int64
	byOutcome  map[string]int64
	scores     map[string]*scoreSum
	latencies  []int64
	next       int
	startTime  time.Time
	now        func() time.Time
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byStrategy: make(map[string]int64),
		byMetric:   make(map[string]int64),
		byOutcome:  make(map[string]int64),
		scores:     make(map[string]*scoreSum),
		latencies:  make([]int64, 0, 1024),
		startTime:  time.Now(),
		now:        time.Now,
	}
}

// Track records the event.
func (a *Aggregator) Track(event ComparisonEvent) {
	a.Record(event)
}

// Record adds one event to the statistics.
func (a *Aggregator) Record(event ComparisonEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.byOutcome[string(event.Outcome)]++
	if event.Outcome != OutcomeOK {
		a.failures++
		return
	}
	a.byStrategy[event.Strategy]++
	a.byMetric[event.Metric]++
	if event.CacheHit {
		a.cacheHits++
	}
	s, ok := a.scores[event.Metric]
	if !ok {
		s = &scoreSum{}
		a.scores[event.Metric] = s
	}
	s.sum += event.Score
	s.count++

	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, event.LatencyMicros)
	} else {
		a.latencies[a.next] = event.LatencyMicros
		a.next = (a.next + 1) % latencyWindow
	}
}

// HandleEvent returns a Kafka message handler that records decoded events.
// Undecodable messages fail with kafka.ErrMalformed.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(_ context.Context, _ []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ComparisonEvent](value)
		if err != nil {
			return err
		}
		agg.Record(event)
		return nil
	}
}

// Stats returns a snapshot of the aggregated statistics.
func (a *Aggregator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := Stats{
		TotalComparisons: a.total,
		Failures:         a.failures,
		CacheHits:        a.cacheHits,
		CacheMisses:      a.total - a.failures - a.cacheHits,
		ByStrategy:       cloneCounts(a.byStrategy),
		ByMetric:         cloneCounts(a.byMetric),
		ByOutcome:        cloneCounts(a.byOutcome),
		MeanScore:        make(map[string]float64, len(a.scores)),
	}
	for metric, s := range a.scores {
		stats.MeanScore[metric] = s.sum / float64(s.count)
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted)) / 1000
		stats.P50LatencyMs = float64(percentile(sorted, 50)) / 1000
		stats.P95LatencyMs = float64(percentile(sorted, 95)) / 1000
		stats.P99LatencyMs = float64(percentile(sorted, 99)) / 1000
	}
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.ComparisonsPerMinute = float64(a.total) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func cloneCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
