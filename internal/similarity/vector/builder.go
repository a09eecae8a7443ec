package vector

import "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/tokenizer"

// Builder turns one source text into a feature vector over voc.
type Builder func(voc *Vocabulary, source string) Vector

// Frequency counts how often each vocabulary term occurs in source. Terms
// that only occur in the other text stay at zero.
func Frequency(voc *Vocabulary, source string) Vector {
	vec := voc.Vector()
	for tok := range tokenizer.Tokens(source) {
		vec.Increment(tok.Term)
	}
	return vec
}

// FirstOccurrence records the 1-based position at which each vocabulary term
// first appears in source. Zero means the term does not appear at all; since
// positions start at 1 the value is never ambiguous. Later appearances of a
// term never overwrite its first position.
func FirstOccurrence(voc *Vocabulary, source string) Vector {
	vec := voc.Vector()
	for tok := range tokenizer.Tokens(source) {
		vec.SetIfUnset(tok.Term, tok.Position)
	}
	return vec
}
