package normalizer

import (
	"fmt"

	"github.com/kljensen/snowball"
)

// Stemmer reduces a token to its stem.
type Stemmer interface {
	Stem(token string) string
}

// SnowballStemmer applies the Snowball algorithm for one language.
type SnowballStemmer struct {
	lang string
}

// NewSnowballStemmer fails when snowball has no algorithm for lang.
func NewSnowballStemmer(lang string) (*SnowballStemmer, error) {
	if _, err := snowball.Stem("probe", lang, true); err != nil {
		return nil, fmt.Errorf("%w: stemmer: %v", ErrResourceUnavailable, err)
	}
	return &SnowballStemmer{lang: lang}, nil
}

// Stem returns token unchanged if snowball rejects it.
func (s *SnowballStemmer) Stem(token string) string {
	stemmed, err := snowball.Stem(token, s.lang, true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}
