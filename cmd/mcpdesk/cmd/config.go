package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored configurations",
	Long:  `List, inspect, reopen and delete deployed or failed configurations.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			recs, err := d.deployer.List(cmd.Context(), d.settings.UserID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No stored configurations. Use 'mcpdesk deploy' to store one.")
				return nil
			}

			fmt.Fprintf(out, "Configurations (%d):\n", len(recs))
			for _, rec := range recs {
				fmt.Fprintf(out, "  %s  %-9s %s  %s  (%s)\n",
					rec.ID, rec.Status, rec.UpdatedAt.Local().Format("2006-01-02 15:04"),
					rec.Name, documentSummary(rec.Document))
			}
			return nil
		})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored configuration and its document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			rec, err := d.store.GetConfiguration(cmd.Context(), d.settings.UserID, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("configuration %s not found", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration: %s [%s]\n", rec.Name, rec.Status)
			fmt.Fprintf(out, "  ID: %s\n", rec.ID)
			fmt.Fprintf(out, "  Created: %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Updated: %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Services: %s\n", enabledServices(rec.Draft))
			if rec.Document != "" {
				fmt.Fprintln(out)
				fmt.Fprint(out, rec.Document)
			}
			return nil
		})
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			if err := d.deployer.Delete(cmd.Context(), d.settings.UserID, args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("configuration %s not found", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var configOpenCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Reopen a stored configuration for editing",
	Long: `Load a stored configuration as the draft in progress, replacing the
current draft. A configuration whose deploy failed opens at the validate
step so it can be retried.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			cfg, err := d.deployer.Load(cmd.Context(), d.settings.UserID, args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("configuration %s not found", args[0])
			}
			if err != nil {
				return err
			}
			t, err := d.tier(cmd.Context())
			if err != nil {
				return err
			}
			cfg.RestoreToken(d.token())

			w := core.NewWizard(cfg, t)
			if err := d.saveWizard(w); err != nil {
				return fmt.Errorf("saving draft: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %q at step %s\n", cfg.Name, w.Step().Title())
			return nil
		})
	},
}

// documentSummary describes a stored mcpServers document without decoding it.
func documentSummary(doc string) string {
	if doc == "" {
		return "no document"
	}
	keys := gjson.Get(doc, "mcpServers.@keys")
	if !keys.Exists() {
		return "no servers"
	}
	n := len(keys.Array())
	if n == 1 {
		return "1 server"
	}
	return fmt.Sprintf("%d servers", n)
}

// enabledServices lists the enabled service IDs recorded in a stored draft.
func enabledServices(draft string) string {
	var ids []string
	gjson.Get(draft, "services").ForEach(func(k, v gjson.Result) bool {
		if v.Get("enabled").Bool() {
			ids = append(ids, k.String())
		}
		return true
	})
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDeleteCmd)
	configCmd.AddCommand(configOpenCmd)
	rootCmd.AddCommand(configCmd)
}
