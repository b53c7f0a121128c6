package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/formfill/internal/extractor"
)

func newDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Print text lines present in NEW but not in OLD",
		Long: `Diff prints the visible text lines that appear in the NEW document and not in
the OLD one, sorted. These are the options a custom dropdown revealed when it
opened.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldMarkup, err := readFile(args[0])
			if err != nil {
				return err
			}
			newMarkup, err := readFile(args[1])
			if err != nil {
				return err
			}

			lines, err := extractor.NewLines(oldMarkup, newMarkup)
			if err != nil {
				return fmt.Errorf("diff: %w", err)
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
