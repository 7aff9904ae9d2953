package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Validate and store the configuration",
	Long: `Validate the configuration in progress, render its mcpServers document
and store it. Deploying is only possible from the validate step. A failed
deploy is recorded and can be retried.

Use 'mcpdesk desktop install' afterwards to write the servers into Claude
Desktop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			w, err := d.loadWizard(cmd.Context())
			if err != nil {
				return err
			}

			doc, deployErr := w.Deploy(cmd.Context(), d.deployer)
			// Failed deploys change the status; keep the draft in step.
			if err := d.saveWizard(w); err != nil {
				return fmt.Errorf("saving draft: %w", err)
			}

			var invalid *core.ValidationFailedError
			switch {
			case errors.As(deployErr, &invalid):
				printProblems(cmd.ErrOrStderr(), invalid.Result)
				return deployErr
			case deployErr != nil:
				return fmt.Errorf("%w; run 'mcpdesk deploy' again to retry", deployErr)
			}

			cfg := w.Config()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deployed %q (%d servers)\n", cfg.Name, len(doc.MCPServers))
			fmt.Fprintf(out, "  ID: %s\n", cfg.ID)
			for _, k := range doc.Keys() {
				fmt.Fprintf(out, "  - %s\n", k)
			}
			fmt.Fprintln(out, "Next: mcpdesk desktop install")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
