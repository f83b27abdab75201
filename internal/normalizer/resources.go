package normalizer

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed resources/*
var builtin embed.FS

// builtinStopWords maps a language to its embedded stop-word file.
var builtinStopWords = map[string]string{
	"english": "resources/english_stopwords.txt",
}

var builtinLemmas = map[string]string{
	"english": "resources/english_lemmas.tsv",
}

// loadStopWords reads the stop-word set from path, or from the embedded
// list for lang when path is empty.
func loadStopWords(lang, path string) (map[string]struct{}, error) {
	rc, err := openResource(path, builtinStopWords[lang], "stop words", lang)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	set := make(map[string]struct{})
	err = scanLines(rc, func(line string) error {
		set[strings.ToLower(line)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read stop words: %v", ErrResourceUnavailable, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: stop-word list for %q is empty", ErrResourceUnavailable, lang)
	}
	return set, nil
}

// loadLemmas reads the form->lemma table. Languages without an embedded
// table get an empty one unless path is set.
func loadLemmas(lang, path string) (map[string]string, error) {
	table := make(map[string]string)
	if path == "" && builtinLemmas[lang] == "" {
		return table, nil
	}
	rc, err := openResource(path, builtinLemmas[lang], "lemma table", lang)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	lineNo := 0
	err = scanLines(rc, func(line string) error {
		lineNo++
		form, lemma, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("entry %d: expected form<TAB>lemma, got %q", lineNo, line)
		}
		form = strings.ToLower(strings.TrimSpace(form))
		lemma = strings.ToLower(strings.TrimSpace(lemma))
		if form == "" || lemma == "" {
			return fmt.Errorf("entry %d: empty form or lemma", lineNo)
		}
		table[form] = lemma
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read lemma table: %v", ErrResourceUnavailable, err)
	}
	return table, nil
}

func openResource(path, embedded, what, lang string) (io.ReadCloser, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrResourceUnavailable, what, err)
		}
		return f, nil
	}
	if embedded == "" {
		return nil, fmt.Errorf("%w: no built-in %s for language %q", ErrResourceUnavailable, what, lang)
	}
	f, err := builtin.Open(embedded)
	if err != nil {
		return nil, fmt.Errorf("%w: open built-in %s: %v", ErrResourceUnavailable, what, err)
	}
	return f, nil
}

// scanLines calls fn for every non-blank line that is not a # comment.
func scanLines(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if err := fn(strings.TrimSpace(line)); err != nil {
			return err
		}
	}
	return sc.Err()
}
