// Package report renders comparison results for people: similarity metrics
// read as percentages, distances as raw numbers.
package report

import (
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
)

var strategyLabels = map[similarity.Strategy]string{
	similarity.Frequency:       "term frequency",
	similarity.FirstOccurrence: "first-occurrence position",
}

var metricLabels = map[similarity.Metric]string{
	similarity.Cosine:     "cosine similarity",
	similarity.Euclidean:  "euclidean distance",
	similarity.MatchRatio: "match ratio",
}

// FormatScore renders score the way it should be read for metric.
func FormatScore(metric similarity.Metric, score float64) string {
	if metric.IsDistance() {
		return strconv.FormatFloat(score, 'f', -1, 64)
	}
	return fmt.Sprintf("%.2f%%", score*100)
}

// Describe names a strategy and metric pair, e.g. "cosine similarity over
// term frequency".
func Describe(strategy similarity.Strategy, metric similarity.Metric) string {
	s, ok := strategyLabels[strategy]
	if !ok {
		s = strategy.String()
	}
	m, ok := metricLabels[metric]
	if !ok {
		m = metric.String()
	}
	return m + " over " + s
}

// Summary is a display-ready view of one comparison.
type Summary struct {
	Label   string `json:"label"`
	Display string `json:"display"`
}

// Summarize builds the Summary for res.
func Summarize(res *similarity.Result) Summary {
	return Summary{
		Label:   Describe(res.Strategy, res.Metric),
		Display: FormatScore(res.Metric, res.Score),
	}
}
