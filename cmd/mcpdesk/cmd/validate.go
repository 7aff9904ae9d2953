package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration in progress",
	Long: `Check the configuration in progress and list every problem found.
Exits with an error when the configuration cannot be deployed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			w, err := d.loadWizard(cmd.Context())
			if err != nil {
				return err
			}
			res := core.Validate(w.Config())
			if !res.IsValid {
				printProblems(cmd.OutOrStdout(), res)
				return fmt.Errorf("configuration has %d problem(s)", len(res.Errors))
			}

			green := color.New(color.FgGreen)
			green.Fprint(cmd.OutOrStdout(), "✓ ")
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (%d servers)\n",
				len(core.GenerateExport(w.Config()).MCPServers))
			return nil
		})
	},
}

func printProblems(out io.Writer, res core.Result) {
	red := color.New(color.FgRed)
	for _, e := range res.Errors {
		red.Fprint(out, "✗ ")
		fmt.Fprintln(out, e)
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
