package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		name   string
		metric similarity.Metric
		score  float64
		want   string
	}{
		{name: "cosine percent", metric: similarity.Cosine, score: 2.0 / 3.0, want: "66.67%"},
		{name: "match ratio percent", metric: similarity.MatchRatio, score: 0.5, want: "50.00%"},
		{name: "full match", metric: similarity.MatchRatio, score: 1, want: "100.00%"},
		{name: "euclidean raw", metric: similarity.Euclidean, score: 5, want: "5"},
		{name: "euclidean irrational", metric: similarity.Euclidean, score: math.Sqrt2, want: "1.4142135623730951"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatScore(tt.metric, tt.score))
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "cosine similarity over term frequency", Describe(similarity.Frequency, similarity.Cosine))
	assert.Equal(t, "euclidean distance over first-occurrence position", Describe(similarity.FirstOccurrence, similarity.Euclidean))
}

func TestSummarize(t *testing.T) {
	res := &similarity.Result{Score: 0.25, Strategy: similarity.Frequency, Metric: similarity.MatchRatio}
	assert.Equal(t, Summary{Label: "match ratio over term frequency", Display: "25.00%"}, Summarize(res))
}
