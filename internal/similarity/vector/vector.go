// Package vector builds the vocabulary shared by two texts and the feature
// vectors derived from it.
package vector

import (
	"maps"
	"slices"
)

// Vector maps each vocabulary term to a non-negative feature value. Two
// vectors built from the same Vocabulary always share the same key set.
type Vector map[string]int

// Clone returns a deep copy of v that shares no storage with it.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	maps.Copy(out, v)
	return out
}

// Equal reports whether v and other hold the same terms with the same values.
func (v Vector) Equal(other Vector) bool {
	return maps.Equal(v, other)
}

// Terms returns the vector's terms in sorted order.
func (v Vector) Terms() []string {
	terms := make([]string, 0, len(v))
	for term := range v {
		terms = append(terms, term)
	}
	slices.Sort(terms)
	return terms
}

// Increment adds one to term's value if term is part of the vector. It
// reports whether the term was present.
func (v Vector) Increment(term string) bool {
	if _, ok := v[term]; !ok {
		return false
	}
	v[term]++
	return true
}

// SetIfUnset stores value for term only while term still holds the zero
// sentinel. It reports whether the value was written.
func (v Vector) SetIfUnset(term string, value int) bool {
	cur, ok := v[term]
	if !ok || cur != 0 {
		return false
	}
	v[term] = value
	return true
}
