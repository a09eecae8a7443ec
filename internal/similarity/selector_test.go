package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"frequency", Frequency},
		{"TF", Frequency},
		{" freq ", Frequency},
		{"first-occurrence", FirstOccurrence},
		{"First_Occurrence", FirstOccurrence},
		{"position", FirstOccurrence},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in   string
		want Metric
	}{
		{"cosine", Cosine},
		{"COS", Cosine},
		{"euclidean", Euclidean},
		{"l2", Euclidean},
		{"match-ratio", MatchRatio},
		{"hamming", MatchRatio},
	}
	for _, tt := range tests {
		got, err := ParseMetric(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseUnknownSelectorSuggests(t *testing.T) {
	_, err := ParseMetric("cosin")
	require.ErrorIs(t, err, ErrInvalidSelector)
	assert.Contains(t, err.Error(), `did you mean "cosine"`)

	_, err = ParseStrategy("frequncy")
	require.ErrorIs(t, err, ErrInvalidSelector)
	assert.Contains(t, err.Error(), `did you mean "frequency"`)
}

func TestParseUnknownSelectorWithoutSuggestion(t *testing.T) {
	_, err := ParseMetric("jaccard-weighted-bm25")
	require.ErrorIs(t, err, ErrInvalidSelector)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = ParseStrategy("")
	require.ErrorIs(t, err, ErrInvalidSelector)
}

func TestSelectorStrings(t *testing.T) {
	assert.Equal(t, "frequency", Frequency.String())
	assert.Equal(t, "first-occurrence", FirstOccurrence.String())
	assert.Equal(t, "match-ratio", MatchRatio.String())
	assert.Equal(t, "metric(9)", Metric(9).String())
	assert.False(t, Strategy(5).Valid())
	assert.True(t, Euclidean.IsDistance())
	assert.False(t, Cosine.IsDistance())
}

func TestSelectorRoundTripThroughText(t *testing.T) {
	for _, s := range Strategies {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back Strategy
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	_, err := Metric(42).MarshalText()
	require.ErrorIs(t, err, ErrInvalidSelector)
}

func TestSuggest(t *testing.T) {
	candidates := []string{"paragraph_a", "paragraph_b"}
	assert.Equal(t, "paragraph_a", Suggest("paragraph-a", candidates))
	assert.Equal(t, "", Suggest("zzz", candidates))
	assert.Equal(t, "", Suggest("", candidates))
}
