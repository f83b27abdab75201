// Command textprep normalizes text from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"textprep/internal/app"
	"textprep/internal/config"
)

func main() {
	if err := app.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "textprep",
		Short:        "Text normalization for NLP pipelines",
		Long:         `Tokenizes, lower-cases and filters stop words, optionally stemming and lemmatizing the result.`,
		SilenceUsage: true,
	}
	root.AddCommand(newNormalizeCmd(cfg))
	root.AddCommand(newCleanPromptCmd())
	return root
}
