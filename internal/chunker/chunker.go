package chunker

import (
	"strings"
)

// DefaultMaxWords bounds a row when Options.MaxWords is unset.
const DefaultMaxWords = 400

// Options controls how text is split into rows.
type Options struct {
	MaxWords int
}

// Chunk is one row of a plain-text document.
type Chunk struct {
	Index int
	Text  string
	Words int
}

// ChunkText packs whole paragraphs (blank-line separated) into rows of at
// most MaxWords whitespace-delimited words. A paragraph longer than MaxWords
// is cut into consecutive windows. Paragraph breaks inside a row are kept.
func ChunkText(text string, opts Options) []Chunk {
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}

	var (
		chunks  []Chunk
		current []string
		count   int
	)
	flush := func() {
		if count == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(current, "\n\n"),
			Words: count,
		})
		current, count = nil, 0
	}

	for _, para := range paragraphs(text) {
		words := strings.Fields(para)
		if count+len(words) > opts.MaxWords {
			flush()
		}
		for len(words) > opts.MaxWords {
			current, count = []string{strings.Join(words[:opts.MaxWords], " ")}, opts.MaxWords
			flush()
			words = words[opts.MaxWords:]
		}
		if len(words) > 0 {
			current = append(current, strings.Join(words, " "))
			count += len(words)
		}
	}
	flush()
	return chunks
}

func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
