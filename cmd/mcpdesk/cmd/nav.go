package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Advance the wizard one step",
	Long: `Advance to the next step once the current one is complete:
at least one service enabled, then every enabled service saved.
From the validate step use 'mcpdesk deploy'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWizard(cmd, func(d *deps, w *core.Wizard) error {
			if err := w.Next(); err != nil {
				var invalid *core.ValidationFailedError
				if errors.As(err, &invalid) {
					printProblems(cmd.ErrOrStderr(), invalid.Result)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Step: %s\n", w.Step().Title())
			return nil
		})
	},
}

var backCmd = &cobra.Command{
	Use:   "back",
	Short: "Go back one step",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWizard(cmd, func(d *deps, w *core.Wizard) error {
			if err := w.Back(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Step: %s\n", w.Step().Title())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(backCmd)
}
