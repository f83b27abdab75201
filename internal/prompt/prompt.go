// Package prompt prepares user text before it is sent to an image generator.
package prompt

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// MaxRunes is the longest prompt kept before the style suffix is added.
	MaxRunes = 1000
	// StyleSuffix is appended to every cleaned prompt.
	StyleSuffix = "artistic, beautiful, detailed, high quality, masterpiece"
)

// DefaultSubstitutions replaces words image generators tend to refuse.
var DefaultSubstitutions = map[string]string{
	"violent":   "energetic",
	"violence":  "action",
	"blood":     "red",
	"dead":      "sleeping",
	"death":     "slumber",
	"kill":      "defeat",
	"war":       "conflict",
	"weapon":    "tool",
	"gun":       "tool",
	"politics":  "government",
	"religion":  "spirituality",
	"drug":      "potion",
	"drugs":     "potions",
	"alcohol":   "beverage",
	"cigarette": "stick",
	"tobacco":   "herb",
}

// Substituter rewrites whole words according to a fixed table.
type Substituter struct {
	re    *regexp.Regexp
	table map[string]string
}

// NewSubstituter compiles table. Keys are matched case-insensitively as
// whole words; longer keys win over their prefixes.
func NewSubstituter(table map[string]string) *Substituter {
	lowered := make(map[string]string, len(table))
	keys := make([]string, 0, len(table))
	for k, v := range table {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := lowered[k]; !dup {
			keys = append(keys, k)
		}
		lowered[k] = v
	}
	if len(keys) == 0 {
		return &Substituter{table: lowered}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return &Substituter{re: re, table: lowered}
}

// Replace applies the table to s.
func (s *Substituter) Replace(text string) string {
	if s.re == nil {
		return text
	}
	return s.re.ReplaceAllStringFunc(text, func(m string) string {
		return s.table[strings.ToLower(m)]
	})
}

var defaultSubstituter = NewSubstituter(DefaultSubstitutions)

// Clean lower-cases p, substitutes sensitive words, truncates it to
// MaxRunes and appends StyleSuffix.
func Clean(p string) string {
	return CleanWith(defaultSubstituter, p)
}

// CleanWith is Clean with a custom substitution table.
func CleanWith(s *Substituter, p string) string {
	out := s.Replace(strings.ToLower(strings.TrimSpace(p)))
	out = Truncate(out, MaxRunes)
	if out == "" {
		return StyleSuffix
	}
	return out + ", " + StyleSuffix
}

// Truncate cuts s to max runes and marks the cut with "...".
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	rs := []rune(s)
	return string(rs[:max]) + "..."
}
