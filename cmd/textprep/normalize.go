package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"textprep/internal/app"
	"textprep/internal/config"
	"textprep/internal/extract"
	"textprep/internal/normalizer"
)

type normalizeOptions struct {
	stem       bool
	lemmatize  bool
	stripPunct bool
	csvPath    string
	column     int
	header     bool
	asJSON     bool
}

func newNormalizeCmd(cfg config.Config) *cobra.Command {
	opts := normalizeOptions{stem: cfg.Stem, lemmatize: cfg.Lemmatize}

	cmd := &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Normalize text, a CSV column, or stdin lines",
		Long: `Normalize prints one line of space separated tokens per input.

Input comes from the arguments (joined into one text), from one column of a
CSV file with --csv, or line by line from stdin when neither is given.`,
		Example: `  textprep normalize "The cats are running quickly."
  textprep normalize --stem --strip-punct "Text preprocessing helps!"
  textprep normalize --csv QA_bot.csv --column 0 --header --lemmatize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			norm, err := app.BuildNormalizer(cfg)
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd.InOrStdin(), args, opts)
			if err != nil {
				return err
			}
			return writeTokens(cmd.OutOrStdout(), norm, inputs, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.stem, "stem", opts.stem, "apply snowball stemming")
	f.BoolVar(&opts.lemmatize, "lemmatize", opts.lemmatize, "apply noun lemmatization")
	f.BoolVar(&opts.stripPunct, "strip-punct", false, "drop punctuation tokens")
	f.StringVar(&opts.csvPath, "csv", "", "read texts from a CSV file")
	f.IntVar(&opts.column, "column", 0, "zero-based CSV column to read")
	f.BoolVar(&opts.header, "header", false, "skip the first CSV record")
	f.BoolVar(&opts.asJSON, "json", false, "print a JSON array of token lists")
	f.StringVar(&cfg.Language, "language", cfg.Language, "resource language")
	f.StringVar(&cfg.StopWordsPath, "stopwords", cfg.StopWordsPath, "newline separated stop-word file")
	f.StringVar(&cfg.LemmasPath, "lemmas", cfg.LemmasPath, "form<TAB>lemma file")
	return cmd
}

func readInputs(stdin io.Reader, args []string, opts normalizeOptions) ([]string, error) {
	switch {
	case opts.csvPath != "" && len(args) > 0:
		return nil, fmt.Errorf("pass either text arguments or --csv, not both")
	case opts.csvPath != "":
		f, err := os.Open(opts.csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return extract.CSVColumn(f, opts.column, opts.header)
	case len(args) > 0:
		return []string{strings.Join(args, " ")}, nil
	}

	var lines []string
	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func writeTokens(w io.Writer, norm *normalizer.Normalizer, inputs []string, opts normalizeOptions) error {
	results := make([][]string, len(inputs))
	for i, text := range inputs {
		if !utf8.ValidString(text) {
			return fmt.Errorf("input %d: %w", i+1, extract.ErrInvalidUTF8)
		}
		tokens := norm.Normalize(text, opts.stem, opts.lemmatize)
		if opts.stripPunct {
			tokens = normalizer.FilterPunctuation(tokens)
		}
		results[i] = tokens
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		return enc.Encode(results)
	}
	bw := bufio.NewWriter(w)
	for _, tokens := range results {
		fmt.Fprintln(bw, strings.Join(tokens, " "))
	}
	return bw.Flush()
}
