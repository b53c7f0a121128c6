package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/formfill/internal/bootstrap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long:  `Serve the work, select_option and event stream API until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Start(cmd.Context())
		},
	}
}
