package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textprep/internal/config"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(config.Config{Language: "english"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"arguments", []string{"normalize", "Hello, world! This is an example sentence."}, "hello , world ! example sentence .\n"},
		{"strip punctuation", []string{"normalize", "--strip-punct", "Hello,", "world!"}, "hello world\n"},
		{"stem", []string{"normalize", "--stem", "--strip-punct", "Text preprocessing helps."}, "text preprocess help\n"},
		{"lemmatize", []string{"normalize", "--lemmatize", "geese", "and", "cats"}, "goose cat\n"},
		{"only stop words", []string{"normalize", "the", "and", "of"}, "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestNormalizeCommandStdin(t *testing.T) {
	out, err := execute(t, "The cats\nIs it here?\n", "normalize", "--json")
	require.NoError(t, err)

	var got [][]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, [][]string{{"cats"}, {"?"}}, got)
}

func TestNormalizeCommandCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "QA_bot.csv")
	require.NoError(t, os.WriteFile(path, []byte("question,answer\nWhat are the cats doing?,Sleeping\n"), 0o600))

	out, err := execute(t, "", "normalize", "--csv", path, "--column", "0", "--header", "--strip-punct")
	require.NoError(t, err)
	assert.Equal(t, "cats\n", out)

	_, err = execute(t, "", "normalize", "--csv", path, "--column", "5")
	assert.Error(t, err)

	_, err = execute(t, "", "normalize", "--csv", path, "some text")
	assert.Error(t, err)
}

func TestNormalizeCommandRejectsInvalidUTF8(t *testing.T) {
	_, err := execute(t, "ok\n\xff\xfe\n", "normalize")
	assert.ErrorContains(t, err, "not valid UTF-8")
}

func TestNormalizeCommandBadLanguage(t *testing.T) {
	_, err := execute(t, "", "normalize", "--language", "klingon", "text")
	assert.Error(t, err)
}

func TestCleanPromptCommand(t *testing.T) {
	out, err := execute(t, "", "clean-prompt", "A", "Violent", "storm")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "a energetic storm, "), out)

	out, err = execute(t, "a quiet lake", "clean-prompt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "a quiet lake, "), out)
}
