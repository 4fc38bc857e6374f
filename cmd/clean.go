/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/staging"
	"github.com/sony-level/fourteen/internal/ui"
)

var staleHours int

// cleanCmd removes holding directories left by earlier sessions
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove staged content kept by skipped operations",
	Long: `Removes the ` + staging.HoldingDirName + ` directory of the current project.
With --stale-hours, only holding directories older than that are removed.

Examples:
  fourteen clean
  fourteen clean --stale-hours 24`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		fs := afero.NewOsFs()
		r := ui.NewRenderer(cmd.OutOrStdout())

		if staleHours > 0 {
			n, err := staging.CleanupStale(fs, cwd, staleHours)
			if err != nil {
				return err
			}
			logger.Debug("stale holding directories removed", zap.Int("count", n))
			r.Success("Removed %d holding director%s older than %dh", n, plural(n, "y", "ies"), staleHours)
			return nil
		}

		if err := staging.CleanupAll(fs, cwd); err != nil {
			return err
		}
		r.Success("Holding area removed")
		return nil
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	cleanCmd.Flags().IntVar(&staleHours, "stale-hours", 0, "only remove holding directories older than this many hours")
	rootCmd.AddCommand(cleanCmd)
}
