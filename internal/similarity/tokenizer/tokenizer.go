// Package tokenizer splits text into the terms used to build feature vectors.
// A term is either a decimal number ("3.14") or a word made of ASCII letters,
// digits and underscores, optionally joined to a second such run by a single
// apostrophe ("don't"). Everything else is skipped.
package tokenizer

import (
	"iter"
	"regexp"
)

// termPattern prefers decimal numbers over bare words so that "3.14" is not
// split at the dot.
var termPattern = regexp.MustCompile(`\d+\.\d+|\w+(?:'\w+)?`)

// Token represents a single term and its 1-based position in the token
// stream of the text it was read from.
type Token struct {
	Term     string
	Position int
}

// Tokens returns a lazy sequence over the terms of text. The sequence can be
// ranged over any number of times; each pass rescans text from the start.
func Tokens(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		offset := 0
		pos := 0
		for offset < len(text) {
			loc := termPattern.FindStringIndex(text[offset:])
			if loc == nil {
				return
			}
			pos++
			start, end := offset+loc[0], offset+loc[1]
			if !yield(Token{Term: text[start:end], Position: pos}) {
				return
			}
			offset = end
		}
	}
}

// Tokenize breaks text into a slice of Tokens.
func Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text)/4)
	for tok := range Tokens(text) {
		tokens = append(tokens, tok)
	}
	return tokens
}

// Count returns the number of terms in text.
func Count(text string) int {
	n := 0
	for range Tokens(text) {
		n++
	}
	return n
}
