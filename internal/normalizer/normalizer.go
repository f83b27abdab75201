// Package normalizer turns free-form text into a filtered, optionally
// stemmed and lemmatized token sequence.
//
// A Normalizer loads its stop words, stemmer and lemma table once in New and
// never mutates them afterwards, so one instance can be shared by any number
// of goroutines.
package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrResourceUnavailable is returned by New when a stop-word list, stemmer
// or lemma table cannot be loaded.
var ErrResourceUnavailable = errors.New("linguistic resource unavailable")

const DefaultLanguage = "english"

// Config selects the linguistic resources and default reduction flags.
type Config struct {
	// Language names the snowball stemmer and built-in resources. Defaults to "english".
	Language string
	// StopWords, when non-nil, replaces the built-in or file stop-word list.
	StopWords []string
	// StopWordsPath points to a newline separated stop-word file.
	StopWordsPath string
	// LemmasPath points to a form<TAB>lemma file replacing the built-in table.
	LemmasPath string

	ApplyStemming      bool
	ApplyLemmatization bool
}

// Normalizer is safe for concurrent use.
type Normalizer struct {
	cfg          Config
	stopWords    map[string]struct{}
	stemmer      Stemmer
	lemmatizer   Lemmatizer
	splitClitics bool
}

// New loads the resources described by cfg.
func New(cfg Config) (*Normalizer, error) {
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	stopWords, err := buildStopWords(cfg)
	if err != nil {
		return nil, err
	}
	stemmer, err := NewSnowballStemmer(cfg.Language)
	if err != nil {
		return nil, err
	}
	lemmas, err := loadLemmas(cfg.Language, cfg.LemmasPath)
	if err != nil {
		return nil, err
	}

	return &Normalizer{
		cfg:          cfg,
		stopWords:    stopWords,
		stemmer:      stemmer,
		lemmatizer:   NewDictionaryLemmatizer(cfg.Language, lemmas),
		splitClitics: cfg.Language == DefaultLanguage,
	}, nil
}

func buildStopWords(cfg Config) (map[string]struct{}, error) {
	if cfg.StopWords == nil {
		return loadStopWords(cfg.Language, cfg.StopWordsPath)
	}
	set := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: stop-word list is empty", ErrResourceUnavailable)
	}
	return set, nil
}

// Language returns the resolved resource language.
func (n *Normalizer) Language() string {
	return n.cfg.Language
}

// Normalize tokenizes text, lower-cases every token, drops stop words and
// then optionally stems and lemmatizes what is left, in that order. Source
// order and duplicates are preserved; punctuation tokens are not removed.
func (n *Normalizer) Normalize(text string, applyStemming, applyLemmatization bool) []string {
	raw := tokenize(text, n.splitClitics)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.ToLower(tok)
		if _, stop := n.stopWords[tok]; stop {
			continue
		}
		if applyStemming {
			tok = n.stemmer.Stem(tok)
		}
		if applyLemmatization {
			tok = n.lemmatizer.Lemmatize(tok)
		}
		out = append(out, tok)
	}
	return out
}

// NormalizeDefault runs Normalize with the flags from Config.
func (n *Normalizer) NormalizeDefault(text string) []string {
	return n.Normalize(text, n.cfg.ApplyStemming, n.cfg.ApplyLemmatization)
}

func (n *Normalizer) IsStopWord(token string) bool {
	_, ok := n.stopWords[strings.ToLower(token)]
	return ok
}
