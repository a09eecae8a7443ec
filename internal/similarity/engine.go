// Package similarity compares two short texts by turning each into a lexical
// feature vector over their shared vocabulary and scoring the pair with a
// vector metric. Every call is independent and free of side effects, so
// comparisons may run in parallel without coordination.
package similarity

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/distance"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/vector"
)

// Request describes one comparison.
type Request struct {
	TextA    string
	TextB    string
	Strategy Strategy
	Metric   Metric
}

// Result is the outcome of a comparison together with the intermediate
// vectors it was computed from.
type Result struct {
	Score          float64       `json:"score"`
	Strategy       Strategy      `json:"strategy"`
	Metric         Metric        `json:"metric"`
	VocabularySize int           `json:"vocabulary_size"`
	TokensA        int           `json:"tokens_a"`
	TokensB        int           `json:"tokens_b"`
	VectorA        vector.Vector `json:"-"`
	VectorB        vector.Vector `json:"-"`
}

var builders = map[Strategy]vector.Builder{
	Frequency:       vector.Frequency,
	FirstOccurrence: vector.FirstOccurrence,
}

var scorers = map[Metric]distance.Func{
	Cosine:     distance.Cosine,
	Euclidean:  distance.Euclidean,
	MatchRatio: distance.MatchRatio,
}

// Compare scores textA against textB using the given strategy and metric.
func Compare(textA, textB string, strategy Strategy, metric Metric) (float64, error) {
	res, err := Analyze(Request{TextA: textA, TextB: textB, Strategy: strategy, Metric: metric})
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

// Analyze runs a comparison and returns the score along with the vocabulary
// size and both feature vectors. Selectors are checked before any work is
// done.
func Analyze(req Request) (*Result, error) {
	build, ok := builders[req.Strategy]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %s", ErrInvalidSelector, req.Strategy)
	}
	score, ok := scorers[req.Metric]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %s", ErrInvalidSelector, req.Metric)
	}

	voc := vector.BuildVocabulary(req.TextA, req.TextB)
	p := build(voc, req.TextA)
	q := build(voc, req.TextB)

	value, err := score(p, q)
	if err != nil {
		return nil, fmt.Errorf("scoring %s over %s vectors: %w", req.Metric, req.Strategy, err)
	}
	return &Result{
		Score:          value,
		Strategy:       req.Strategy,
		Metric:         req.Metric,
		VocabularySize: voc.Len(),
		TokensA:        tokenizer.Count(req.TextA),
		TokensB:        tokenizer.Count(req.TextB),
		VectorA:        p,
		VectorB:        q,
	}, nil
}
