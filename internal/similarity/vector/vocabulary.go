package vector

import "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/tokenizer"

// Vocabulary is the set of distinct terms found in either of two texts.
// It is immutable once built; vectors are derived from it by copy.
type Vocabulary struct {
	terms Vector
}

// BuildVocabulary tokenizes a and then b and records every distinct term with
// an initial value of zero.
func BuildVocabulary(a, b string) *Vocabulary {
	terms := make(Vector)
	for _, text := range []string{a, b} {
		for tok := range tokenizer.Tokens(text) {
			if _, seen := terms[tok.Term]; !seen {
				terms[tok.Term] = 0
			}
		}
	}
	return &Vocabulary{terms: terms}
}

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Contains reports whether term appears in either source text.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.terms[term]
	return ok
}

// Terms returns the vocabulary's terms in sorted order.
func (v *Vocabulary) Terms() []string {
	return v.terms.Terms()
}

// Vector returns a fresh zero-valued vector over the vocabulary's terms.
func (v *Vocabulary) Vector() Vector {
	return v.terms.Clone()
}
