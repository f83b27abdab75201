package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// englishClitics are the contraction suffixes split off after an apostrophe.
var englishClitics = map[string]struct{}{
	"s": {}, "re": {}, "ve": {}, "ll": {}, "d": {}, "m": {},
}

// Tokenize splits English text into word and punctuation tokens.
//
// Letter/digit runs form words; hyphens and apostrophes between word
// characters and periods/commas between digits stay inside the word.
// Single-letter abbreviations stay whole without their final period
// ("U.S.A." -> "U.S.A", "."). Contractions are split ("don't" -> "do",
// "n't"). Format characters such as a BOM or zero-width space separate
// words like whitespace. Any other non-space rune starts a punctuation
// token; repeats of the same rune are kept together.
func Tokenize(text string) []string {
	return tokenize(text, true)
}

// prepare maps format characters (category Cf) to spaces and composes the
// result to NFC.
var prepare = transform.Chain(
	runes.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return ' '
		}
		return r
	}),
	norm.NFC,
)

func tokenize(text string, splitClitics bool) []string {
	prepared, _, err := transform.String(prepare, text)
	if err != nil {
		prepared = norm.NFC.String(text)
	}
	rs := []rune(prepared)
	tokens := make([]string, 0, len(rs)/4+1)

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			i++
		case isWordRune(r):
			if end := abbreviationEnd(rs, i); end > 0 {
				// The trailing period is left for the punctuation branch.
				tokens = append(tokens, string(rs[i:end-1]))
				i = end - 1
				continue
			}
			j := i + 1
			for j < len(rs) && (isWordRune(rs[j]) || unicode.IsMark(rs[j]) || joins(rs, j)) {
				j++
			}
			word := rs[i:j]
			if splitClitics {
				tokens = appendClitics(tokens, word)
			} else {
				tokens = append(tokens, string(word))
			}
			i = j
		default:
			j := i + 1
			for j < len(rs) && rs[j] == r {
				j++
			}
			tokens = append(tokens, string(rs[i:j]))
			i = j
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// joins reports whether rs[j] glues the runes on either side into one word.
func joins(rs []rune, j int) bool {
	if j == 0 || j+1 >= len(rs) {
		return false
	}
	prev, cur, next := rs[j-1], rs[j], rs[j+1]
	switch {
	case cur == '-' || isApostrophe(cur):
		return (isWordRune(prev) || unicode.IsMark(prev)) && isWordRune(next)
	case cur == '.' || cur == ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	}
	return false
}

// abbreviationEnd returns the index just past a run of at least two
// single-letter, period-terminated pairs starting at rs[i] ("e.g.",
// "U.S.A."), or 0 when there is none. The run must not be followed by a
// word rune.
func abbreviationEnd(rs []rune, i int) int {
	k, pairs := i, 0
	for k+1 < len(rs) && unicode.IsLetter(rs[k]) && rs[k+1] == '.' {
		pairs++
		k += 2
	}
	if pairs < 2 || (k < len(rs) && (isWordRune(rs[k]) || unicode.IsMark(rs[k]))) {
		return 0
	}
	return k
}

func appendClitics(tokens []string, word []rune) []string {
	n := len(word)
	if n > 3 && unicode.ToLower(word[n-3]) == 'n' && isApostrophe(word[n-2]) && unicode.ToLower(word[n-1]) == 't' {
		return append(tokens, string(word[:n-3]), string(word[n-3:]))
	}
	for k := n - 2; k > 0; k-- {
		if !isApostrophe(word[k]) {
			continue
		}
		if _, ok := englishClitics[strings.ToLower(string(word[k+1:]))]; ok {
			return append(tokens, string(word[:k]), string(word[k:]))
		}
		break
	}
	return append(tokens, string(word))
}
