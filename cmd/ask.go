/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/ui"
)

// askCmd runs a single turn
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question, review the proposed changes and exit",
	Long: `Sends one question with the project context, shows the reply and asks
for approval of every proposed operation, exactly like one turn of the
interactive loop.

Examples:
  fourteen ask "why does go test fail?"
  fourteen ask --provider mock "hello"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := ui.NewRenderer(os.Stdout)
		sess, err := newSession(r)
		if err != nil {
			return err
		}
		defer func() {
			if err := sess.Close(); err != nil {
				logger.Warn("failed to clean up holding area", zap.Error(err))
			}
		}()

		return sess.Ask(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
