package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextPacksParagraphs(t *testing.T) {
	text := "one two three\n\nfour five\n\nsix seven eight nine"
	chunks := ChunkText(text, Options{MaxWords: 5})

	require.Len(t, chunks, 2)
	assert.Equal(t, Chunk{Index: 0, Text: "one two three\n\nfour five", Words: 5}, chunks[0])
	assert.Equal(t, Chunk{Index: 1, Text: "six seven eight nine", Words: 4}, chunks[1])
}

func TestChunkTextSplitsLongParagraph(t *testing.T) {
	text := "one two three four five six seven"
	chunks := ChunkText(text, Options{MaxWords: 3})

	require.Len(t, chunks, 3)
	assert.Equal(t, "one two three", chunks[0].Text)
	assert.Equal(t, "four five six", chunks[1].Text)
	assert.Equal(t, "seven", chunks[2].Text)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	assert.Empty(t, ChunkText("", Options{MaxWords: 10}))
	assert.Empty(t, ChunkText(" \n\n \r\n\r\n", Options{}))
}

func TestChunkTextDefaults(t *testing.T) {
	text := strings.Repeat("word ", 2*DefaultMaxWords+1)
	chunks := ChunkText(text, Options{})

	require.Len(t, chunks, 3)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Words, DefaultMaxWords)
		total += c.Words
	}
	assert.Equal(t, 2*DefaultMaxWords+1, total)
}

func TestChunkTextWindowsCRLF(t *testing.T) {
	chunks := ChunkText("a b\r\n\r\nc d", Options{MaxWords: 10})
	require.Len(t, chunks, 1)
	assert.Equal(t, "a b\n\nc d", chunks[0].Text)
	assert.Equal(t, 4, chunks[0].Words)
}
