package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var qualityCmd = &cobra.Command{
	Use:   "quality <file>",
	Short: "Score dataset quality without printing the full profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runProfile(cmd, args[0])
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report.Quality)
		}

		renderQuality(os.Stdout, &report.Quality)
		return nil
	},
}
