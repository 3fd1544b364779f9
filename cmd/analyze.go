package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saurav-thakur/Youtube-Comments-Sentiments-Analysis/internal/bootstrap"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <videoId>",
		Short: "Run the sentiment pipeline once for a video and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, runErr := bootstrap.RunOnce(cmd.Context(), cfgFile, args[0])
			if runErr != nil && result == nil {
				return runErr
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			if encodeErr := encoder.Encode(result); encodeErr != nil {
				return fmt.Errorf("encode result: %w", encodeErr)
			}

			if runErr != nil {
				return fmt.Errorf("run ended %s: %w", result.Status, runErr)
			}

			return nil
		},
	}
}
