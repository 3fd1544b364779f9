package cmd

import (
	"github.com/spf13/cobra"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/bootstrap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return bootstrap.Serve(cfgFile)
		},
	}
}
