package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terms(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Term)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "whitespace only", text: "  \t\n ", want: []string{}},
		{name: "punctuation only", text: "!?.,;- --", want: []string{}},
		{name: "simple words", text: "the cat sat", want: []string{"the", "cat", "sat"}},
		{name: "decimal numbers kept whole", text: "3.14 is pi", want: []string{"3.14", "is", "pi"}},
		{name: "apostrophe contraction", text: "don't stop", want: []string{"don't", "stop"}},
		{name: "trailing apostrophe dropped", text: "dogs' bone", want: []string{"dogs", "bone"}},
		{name: "leading apostrophe dropped", text: "'tis", want: []string{"tis"}},
		{name: "case preserved", text: "The the THE", want: []string{"The", "the", "THE"}},
		{name: "integer without fraction", text: "42 apples", want: []string{"42", "apples"}},
		{name: "dangling dot", text: "3. and .5", want: []string{"3", "and", "5"}},
		{name: "dotted chain", text: "1.2.3", want: []string{"1.2", "3"}},
		{name: "underscore is a word character", text: "snake_case", want: []string{"snake_case"}},
		{name: "word glued to number", text: "v2.0", want: []string{"v2", "0"}},
		{name: "non ascii skipped", text: "café naïve", want: []string{"caf", "na", "ve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, terms(Tokenize(tt.text)))
		})
	}
}

func TestTokenPositionsAreOneBased(t *testing.T) {
	tokens := Tokenize("x y x")
	require.Len(t, tokens, 3)
	for i, tok := range tokens {
		assert.Equal(t, i+1, tok.Position)
	}
}

func TestTokensIsRestartable(t *testing.T) {
	seq := Tokens("2.71 is e")
	var first, second []Token
	for tok := range seq {
		first = append(first, tok)
	}
	for tok := range seq {
		second = append(second, tok)
	}
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"2.71", "is", "e"}, terms(first))
}

func TestTokensStopsEarly(t *testing.T) {
	var seen []string
	for tok := range Tokens("one two three four") {
		seen = append(seen, tok.Term)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"one", "two"}, seen)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count(""))
	assert.Equal(t, 4, Count("it's 9.5 o'clock now"))
}
