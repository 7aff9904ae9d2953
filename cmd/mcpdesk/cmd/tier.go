package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/catalog"
	"github.com/barysiuk/mcpdesk/internal/core/tier"
)

var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Show or change the subscription tier",
}

var tierShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the subscription tier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			t, err := d.tier(cmd.Context())
			if err != nil {
				return err
			}
			printTier(cmd, t)
			return nil
		})
	},
}

var tierSetCmd = &cobra.Command{
	Use:   "set <none|basic|complete>",
	Short: "Change the subscription tier",
	Long: `Change the locally stored subscription tier. The draft in progress is
adjusted: Hugging Face is disabled on the none tier and model selections past
the new limit are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.ToLower(strings.TrimSpace(args[0]))
		t := tier.Resolve(raw)
		if t == tier.None && raw != "none" && raw != "free" && raw != "" {
			return fmt.Errorf("unknown tier %q (want none, basic or complete)", args[0])
		}

		return withDeps(cmd, func(d *deps) error {
			w, draftErr := d.loadWizard(cmd.Context())

			if err := d.identity.UpdateSubscriptionTier(cmd.Context(), t); err != nil {
				return err
			}
			printTier(cmd, t)

			if draftErr != nil {
				return nil
			}
			reportTierChange(cmd, w.SetTier(t))
			if err := d.saveWizard(w); err != nil {
				return fmt.Errorf("saving draft: %w", err)
			}
			return nil
		})
	},
}

func printTier(cmd *cobra.Command, t tier.Tier) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tier: %s\n", t)
	fmt.Fprintf(out, "  Hugging Face: %s\n", map[bool]string{true: "available", false: "requires subscription"}[t.IsPaid()])
	fmt.Fprintf(out, "  Max models: %d\n", catalog.MaxSelectable(t))
}

func reportTierChange(cmd *cobra.Command, change core.TierChange) {
	out := cmd.OutOrStdout()
	if len(change.Disabled) > 0 {
		fmt.Fprintf(out, "Disabled: %s\n", joinIDs(change.Disabled))
	}
	if len(change.DroppedModels) > 0 {
		fmt.Fprintf(out, "Dropped models: %s\n", strings.Join(change.DroppedModels, ", "))
	}
}

func init() {
	tierCmd.AddCommand(tierShowCmd)
	tierCmd.AddCommand(tierSetCmd)
	rootCmd.AddCommand(tierCmd)
}
