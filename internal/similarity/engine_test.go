package similarity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/vector"
)

func TestCompareSharedTerms(t *testing.T) {
	got, err := Compare("the cat sat", "the dog sat", Frequency, MatchRatio)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	got, err = Compare("the cat sat", "the dog sat", Frequency, Cosine)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, got, 1e-12)

	got, err = Compare("the cat sat", "the dog sat", Frequency, Euclidean)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, got, 1e-12)
}

func TestCompareIdenticalTexts(t *testing.T) {
	want := map[Metric]float64{Cosine: 1, Euclidean: 0, MatchRatio: 1}
	for _, strategy := range Strategies {
		for metric, expected := range want {
			got, err := Compare("a a a", "a a a", strategy, metric)
			require.NoError(t, err)
			assert.InDelta(t, expected, got, 1e-12, "%s/%s", strategy, metric)
		}
	}
}

func TestAnalyzeKeepsNumbersWhole(t *testing.T) {
	res, err := Analyze(Request{TextA: "3.14 is pi", TextB: "2.71 is e", Strategy: Frequency, Metric: MatchRatio})
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{"3.14": 1, "is": 1, "pi": 1, "2.71": 0, "e": 0}, res.VectorA)
	assert.Equal(t, vector.Vector{"3.14": 0, "is": 1, "pi": 0, "2.71": 1, "e": 1}, res.VectorB)
	assert.Equal(t, 5, res.VocabularySize)
	assert.Equal(t, 3, res.TokensA)
	assert.Equal(t, 3, res.TokensB)
	assert.InDelta(t, 0.2, res.Score, 1e-12)
}

func TestAnalyzeFirstOccurrence(t *testing.T) {
	res, err := Analyze(Request{TextA: "x y x", TextB: "y x", Strategy: FirstOccurrence, Metric: MatchRatio})
	require.NoError(t, err)
	assert.Equal(t, vector.Vector{"x": 1, "y": 2}, res.VectorA)
	assert.Equal(t, vector.Vector{"x": 2, "y": 1}, res.VectorB)
	assert.Zero(t, res.Score)
}

func TestAnalyzeVectorShapes(t *testing.T) {
	for _, strategy := range Strategies {
		res, err := Analyze(Request{TextA: "one two two", TextB: "three", Strategy: strategy, Metric: Cosine})
		require.NoError(t, err)
		assert.Len(t, res.VectorA, res.VocabularySize)
		assert.Len(t, res.VectorB, res.VocabularySize)
	}
}

func TestCompareEmptyTexts(t *testing.T) {
	tests := []struct {
		metric Metric
		want   float64
	}{
		{Cosine, 0},
		{Euclidean, 0},
		{MatchRatio, 1},
	}
	for _, tt := range tests {
		got, err := Compare("", "", Frequency, tt.metric)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.metric.String())
	}
}

func TestCompareOneSideWithoutTokens(t *testing.T) {
	got, err := Compare("...", "hello", Frequency, Cosine)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.False(t, math.IsNaN(got))
}

func TestCompareInvalidSelectors(t *testing.T) {
	_, err := Compare("a", "b", Strategy(7), Cosine)
	require.ErrorIs(t, err, ErrInvalidSelector)

	_, err = Compare("a", "b", Frequency, Metric(-1))
	require.ErrorIs(t, err, ErrInvalidSelector)

	res, err := Analyze(Request{TextA: "a", TextB: "a", Strategy: Frequency, Metric: Metric(3)})
	require.ErrorIs(t, err, ErrInvalidSelector)
	assert.Nil(t, res)
}

func TestResultJSON(t *testing.T) {
	res, err := Analyze(Request{TextA: "a b", TextB: "b c", Strategy: FirstOccurrence, Metric: Euclidean})
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":`+jsonFloat(t, res.Score)+`,"strategy":"first-occurrence","metric":"euclidean","vocabulary_size":3,"tokens_a":2,"tokens_b":2}`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, FirstOccurrence, decoded.Strategy)
	assert.Equal(t, Euclidean, decoded.Metric)
	assert.Nil(t, decoded.VectorA)
}

func jsonFloat(t *testing.T, f float64) string {
	t.Helper()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	return string(data)
}
