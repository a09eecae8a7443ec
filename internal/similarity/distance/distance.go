// Package distance scores two feature vectors against each other. Every
// function requires both vectors to cover exactly the same terms, which is
// always true for vectors derived from one vocabulary.
package distance

import (
	"errors"
	"fmt"
	"math"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/vector"
)

// ErrInvariantViolation is returned when the two vectors do not share a key
// set. It indicates a programming error upstream, not bad user input.
var ErrInvariantViolation = errors.New("feature vectors are not aligned")

// Func computes a score over two aligned vectors.
type Func func(p, q vector.Vector) (float64, error)

// Cosine returns the cosine of the angle between p and q. If either vector
// has zero magnitude the similarity is defined as 0.
func Cosine(p, q vector.Vector) (float64, error) {
	if err := checkAligned(p, q); err != nil {
		return 0, err
	}
	var dot, normP, normQ float64
	for term, a := range p {
		b := float64(q[term])
		dot += float64(a) * b
		normP += float64(a) * float64(a)
		normQ += b * b
	}
	if normP == 0 || normQ == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normP) * math.Sqrt(normQ)), nil
}

// Euclidean returns the straight-line distance between p and q. It is zero
// exactly when the vectors are equal.
func Euclidean(p, q vector.Vector) (float64, error) {
	if err := checkAligned(p, q); err != nil {
		return 0, err
	}
	var sum float64
	for term, a := range p {
		d := float64(a - q[term])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// MatchRatio returns the fraction of terms whose values are identical in p
// and q, zero-versus-zero included. Two empty vectors match completely.
func MatchRatio(p, q vector.Vector) (float64, error) {
	if err := checkAligned(p, q); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 1, nil
	}
	matches := 0
	for term, a := range p {
		if a == q[term] {
			matches++
		}
	}
	return float64(matches) / float64(len(p)), nil
}

func checkAligned(p, q vector.Vector) error {
	if len(p) != len(q) {
		return fmt.Errorf("%w: sizes %d and %d", ErrInvariantViolation, len(p), len(q))
	}
	for term := range p {
		if _, ok := q[term]; !ok {
			return fmt.Errorf("%w: term %q missing from second vector", ErrInvariantViolation, term)
		}
	}
	return nil
}
