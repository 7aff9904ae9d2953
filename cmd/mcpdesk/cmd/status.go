package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/service"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configuration in progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			w, err := d.loadWizard(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), w)
			return nil
		})
	},
}

func printStatus(out io.Writer, w *core.Wizard) {
	cfg := w.Config()
	fmt.Fprintf(out, "Configuration: %s [%s]\n", cfg.Name, cfg.Status)
	if cfg.ID != "" {
		fmt.Fprintf(out, "  ID: %s\n", cfg.ID)
	}
	fmt.Fprintf(out, "  Tier: %s\n", w.Tier())
	fmt.Fprintf(out, "  Step: %s (%d/%d)\n", w.Step().Title(), w.Step().Index()+1, len(core.Steps()))
	if active := w.ActiveService(); active != "" {
		fmt.Fprintf(out, "  Active service: %s\n", active)
	}

	fmt.Fprintln(out, "  Services:")
	for _, s := range service.All() {
		sc := cfg.Service(s.ID())
		fmt.Fprintf(out, "    %-12s %s\n", s.ID(), serviceState(w, sc))
	}

	if len(cfg.Models) > 0 {
		ids := make([]string, len(cfg.Models))
		for i, m := range cfg.Models {
			ids[i] = m.ID
		}
		fmt.Fprintf(out, "  Models: %s\n", strings.Join(ids, ", "))
	}
}

func serviceState(w *core.Wizard, sc *service.Config) string {
	switch {
	case sc.Configured:
		return "configured"
	case sc.Enabled:
		return "enabled"
	case !w.Tier().Allows(sc.RequiresSubscription):
		return "disabled (requires subscription)"
	default:
		return "disabled"
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
