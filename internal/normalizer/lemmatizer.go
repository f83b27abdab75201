package normalizer

import (
	"unicode"

	"github.com/gertd/go-pluralize"
)

// Lemmatizer reduces a token to its dictionary base form.
type Lemmatizer interface {
	Lemmatize(token string) string
}

// DictionaryLemmatizer looks tokens up in an irregular-form table and, for
// English, falls back to regular plural rules. Tokens are treated as nouns.
type DictionaryLemmatizer struct {
	table  map[string]string
	plural *pluralize.Client
}

// NewDictionaryLemmatizer builds a lemmatizer over table. Plural rules are
// only applied for English.
func NewDictionaryLemmatizer(lang string, table map[string]string) *DictionaryLemmatizer {
	l := &DictionaryLemmatizer{table: table}
	if lang == "english" {
		l.plural = pluralize.NewClient()
	}
	return l
}

func (l *DictionaryLemmatizer) Lemmatize(token string) string {
	if lemma, ok := l.table[token]; ok {
		return lemma
	}
	if l.plural == nil || len(token) < 3 || !isLetters(token) {
		return token
	}
	if !l.plural.IsPlural(token) {
		return token
	}
	if singular := l.plural.Singular(token); singular != "" {
		return singular
	}
	return token
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
