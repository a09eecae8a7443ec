package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/vector"
)

var metrics = map[string]Func{
	"cosine":      Cosine,
	"euclidean":   Euclidean,
	"match_ratio": MatchRatio,
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		p, q vector.Vector
		want float64
	}{
		{name: "identical", p: vector.Vector{"a": 3}, q: vector.Vector{"a": 3}, want: 1},
		{name: "orthogonal", p: vector.Vector{"a": 1, "b": 0}, q: vector.Vector{"a": 0, "b": 1}, want: 0},
		{name: "partial overlap", p: vector.Vector{"the": 1, "cat": 1, "sat": 1, "dog": 0}, q: vector.Vector{"the": 1, "cat": 0, "sat": 1, "dog": 1}, want: 2.0 / 3.0},
		{name: "scaled", p: vector.Vector{"a": 1, "b": 2}, q: vector.Vector{"a": 2, "b": 4}, want: 1},
		{name: "one zero vector", p: vector.Vector{"a": 0}, q: vector.Vector{"a": 1}, want: 0},
		{name: "both zero vectors", p: vector.Vector{"a": 0, "b": 0}, q: vector.Vector{"a": 0, "b": 0}, want: 0},
		{name: "empty", p: vector.Vector{}, q: vector.Vector{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.p, tt.q)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name string
		p, q vector.Vector
		want float64
	}{
		{name: "identical", p: vector.Vector{"a": 3}, q: vector.Vector{"a": 3}, want: 0},
		{name: "single difference", p: vector.Vector{"a": 1, "b": 0}, q: vector.Vector{"a": 0, "b": 0}, want: 1},
		{name: "pythagorean", p: vector.Vector{"a": 0, "b": 0}, q: vector.Vector{"a": 3, "b": 4}, want: 5},
		{name: "scenario one", p: vector.Vector{"the": 1, "cat": 1, "sat": 1, "dog": 0}, q: vector.Vector{"the": 1, "cat": 0, "sat": 1, "dog": 1}, want: math.Sqrt2},
		{name: "empty", p: vector.Vector{}, q: vector.Vector{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Euclidean(tt.p, tt.q)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestMatchRatio(t *testing.T) {
	tests := []struct {
		name string
		p, q vector.Vector
		want float64
	}{
		{name: "scenario one", p: vector.Vector{"the": 1, "cat": 1, "sat": 1, "dog": 0}, q: vector.Vector{"the": 1, "cat": 0, "sat": 1, "dog": 1}, want: 0.5},
		{name: "identical", p: vector.Vector{"a": 3}, q: vector.Vector{"a": 3}, want: 1},
		{name: "all zero both sides", p: vector.Vector{"a": 0, "b": 0}, q: vector.Vector{"a": 0, "b": 0}, want: 1},
		{name: "nothing matches", p: vector.Vector{"a": 1, "b": 2}, q: vector.Vector{"a": 2, "b": 1}, want: 0},
		{name: "empty", p: vector.Vector{}, q: vector.Vector{}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchRatio(tt.p, tt.q)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestMetricsAreSymmetric(t *testing.T) {
	p := vector.Vector{"a": 3, "b": 0, "c": 1, "d": 7}
	q := vector.Vector{"a": 1, "b": 2, "c": 1, "d": 0}
	for name, fn := range metrics {
		t.Run(name, func(t *testing.T) {
			pq, err := fn(p, q)
			require.NoError(t, err)
			qp, err := fn(q, p)
			require.NoError(t, err)
			assert.InDelta(t, pq, qp, 1e-12)
		})
	}
}

func TestMatchRatioBounds(t *testing.T) {
	p := vector.Vector{"a": 3, "b": 0, "c": 1}
	q := vector.Vector{"a": 1, "b": 0, "c": 2}
	got, err := MatchRatio(p, q)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
	assert.InDelta(t, 1.0/3.0, got, 1e-12)
}

func TestMismatchedSizesViolateInvariant(t *testing.T) {
	p := vector.Vector{"a": 1, "b": 2}
	q := vector.Vector{"a": 1}
	for name, fn := range metrics {
		t.Run(name, func(t *testing.T) {
			got, err := fn(p, q)
			require.ErrorIs(t, err, ErrInvariantViolation)
			assert.Zero(t, got)

			_, err = fn(q, p)
			require.ErrorIs(t, err, ErrInvariantViolation)
		})
	}
}

func TestMismatchedKeysViolateInvariant(t *testing.T) {
	p := vector.Vector{"a": 1, "b": 2}
	q := vector.Vector{"a": 1, "c": 2}
	for name, fn := range metrics {
		t.Run(name, func(t *testing.T) {
			_, err := fn(p, q)
			require.ErrorIs(t, err, ErrInvariantViolation)
			assert.Contains(t, err.Error(), `"b"`)
		})
	}
}
