// Package cmd implements the formfill command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	infraconfig "github.com/jonesrussell/north-cloud/formfill/infrastructure/config"
)

// Version is overridden at build time with -ldflags.
var Version = "1.0.0"

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "formfill",
		Short: "Fill long web forms from a context document",
		Long: `formfill extracts the fillable elements of a rendered page, asks a language
model which of them apply to the context document and with what values, and
streams fill and click actions back to the page.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if cfgFile != "" {
				return os.Setenv(infraconfig.ConfigPathEnv, cfgFile)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml or $CONFIG_PATH)")

	root.AddCommand(
		newServeCommand(),
		newExtractCommand(),
		newDiffCommand(),
		newTokenCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "formfill version %s\n", Version)
			},
		},
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	// A missing .env file is fine; variables may come from the environment.
	_ = godotenv.Load()

	return NewRootCommand().ExecuteContext(context.Background())
}
