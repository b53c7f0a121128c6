package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/extractor"
	"github.com/jonesrussell/north-cloud/formfill/internal/fetch"
	"github.com/jonesrussell/north-cloud/formfill/internal/planner"
)

const stdinArg = "-"

var errNoSource = errors.New("give a file, - for stdin, or --url")

type extractOptions struct {
	url      string
	render   bool
	asJSON   bool
	xlsx     string
	timeout  time.Duration
	attempts int
}

func newExtractCommand() *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Print the fillable elements of a page",
		Long: `Extract reads a document from a file, stdin or a URL and prints every input,
select, textarea and button with its key, selector and surrounding text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markup, err := readDocument(cmd, args, opts)
			if err != nil {
				return err
			}

			tags, err := extractor.Extract(markup)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}

			if opts.xlsx != "" {
				if err := writeWorkbook(opts.xlsx, tags); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d elements to %s\n", len(tags), opts.xlsx)
				return nil
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tags)
			}
			renderTags(cmd.OutOrStdout(), tags)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "fetch the document from this URL")
	cmd.Flags().BoolVar(&opts.render, "render", false, "render --url in a headless browser first")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "write the elements to this spreadsheet instead of printing them")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "fetch timeout")
	cmd.Flags().IntVar(&opts.attempts, "attempts", 3, "fetch attempts on transient errors")
	return cmd
}

func readDocument(cmd *cobra.Command, args []string, opts extractOptions) (string, error) {
	switch {
	case opts.url != "":
		logger := infralogger.NewNop()
		f := fetch.WithRetry(fetch.For(opts.render, opts.timeout, logger), retry.Config{MaxAttempts: opts.attempts}, logger)
		return f.Fetch(cmd.Context(), opts.url)
	case len(args) == 0:
		return "", errNoSource
	case args[0] == stdinArg:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		return readFile(args[0])
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func renderTags(w io.Writer, tags []domain.TagRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Idx", "Key", "Type", "Selector", "Above", "Below"})

	for _, tag := range tags {
		t.AppendRow(table.Row{
			tag.Idx,
			tag.Key,
			tag.TagType,
			planner.Selector(string(tag.TagType), tag.Attributes),
			strings.Join(tag.TextAbove, " | "),
			strings.Join(tag.TextBelow, " | "),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(tags)})
	t.Render()
}
