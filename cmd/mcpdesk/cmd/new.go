package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new configuration",
	Long: `Start a new configuration, replacing the draft in progress.
Stored configurations are not affected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = core.DefaultName(time.Now())
			}

			t, err := d.tier(cmd.Context())
			if err != nil {
				return err
			}
			w := core.NewWizard(core.NewConfiguration(d.settings.UserID, name), t)
			if err := d.saveWizard(w); err != nil {
				return fmt.Errorf("saving draft: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started %q (tier: %s)\n", name, w.Tier())
			fmt.Fprintln(out, "Next: mcpdesk service enable <id>")
			return nil
		})
	},
}

func init() {
	newCmd.Flags().String("name", "", "Configuration name (default: dated name)")
	rootCmd.AddCommand(newCmd)
}
