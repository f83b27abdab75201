package normalizer

import "unicode"

// IsPunctuation reports whether token consists only of punctuation or
// symbol runes. The empty string is not punctuation.
func IsPunctuation(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// FilterPunctuation returns tokens without the pure-punctuation entries.
// Normalize keeps punctuation; callers that don't want it use this.
func FilterPunctuation(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !IsPunctuation(t) {
			out = append(out, t)
		}
	}
	return out
}
