package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"textprep/internal/prompt"
)

func newCleanPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean-prompt [text...]",
		Short: "Sanitize an image-generation prompt",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt.Clean(text))
			return err
		},
	}
}
