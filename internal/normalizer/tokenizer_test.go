package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", " \t\n ", []string{}},
		{"punctuation split", "Hello, world!", []string{"Hello", ",", "world", "!"}},
		{"contraction", "don't stop", []string{"do", "n't", "stop"}},
		{"possessive", "NLP's future", []string{"NLP", "'s", "future"}},
		{"curly apostrophe", "we’re here", []string{"we", "’re", "here"}},
		{"hyphenated", "state-of-the-art models", []string{"state-of-the-art", "models"}},
		{"trailing hyphen", "pre- and post", []string{"pre", "-", "and", "post"}},
		{"numbers", "pi is 3.14 not 1,000", []string{"pi", "is", "3.14", "not", "1,000"}},
		{"ellipsis run", "Wait...", []string{"Wait", "..."}},
		{"mixed punctuation", "(ok)?!", []string{"(", "ok", ")", "?", "!"}},
		{"lone period", ".", []string{"."}},
		{"non-clitic apostrophe", "o'clock", []string{"o'clock"}},
		{"quoted word", "'quoted'", []string{"'", "quoted", "'"}},
		{"unicode letters", "café naïve", []string{"café", "naïve"}},
		{"abbreviation", "e.g. state-of-the-art", []string{"e.g", ".", "state-of-the-art"}},
		{"abbreviation before clitic", "U.S.A. won't", []string{"U.S.A", ".", "wo", "n't"}},
		{"abbreviation ends sentence", "in the U.S...", []string{"in", "the", "U.S", "..."}},
		{"single initial", "A. Smith", []string{"A", ".", "Smith"}},
		{"letter pairs without final period", "a.b.c", []string{"a", ".", "b", ".", "c"}},
		{"zero width space", "cats\u200bdogs", []string{"cats", "dogs"}},
		{"byte order mark", "\ufeffCats sleep", []string{"Cats", "sleep"}},
		{"word joiner", "a\u2060b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestTokenizeComposesCombiningMarks(t *testing.T) {
	// "e" + COMBINING ACUTE ACCENT composes to a single rune.
	assert.Equal(t, []string{"caf\u00e9"}, Tokenize("cafe\u0301"))
}

func TestFilterPunctuation(t *testing.T) {
	in := []string{"hello", ",", "...", "n't", "$", "3.14", "«", "world"}
	assert.Equal(t, []string{"hello", "n't", "3.14", "world"}, FilterPunctuation(in))
	assert.False(t, IsPunctuation(""))
	assert.Empty(t, FilterPunctuation(nil))
}
