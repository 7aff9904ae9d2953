package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/catalog"
	"github.com/barysiuk/mcpdesk/internal/core/service"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Browse Hugging Face models and tune their parameters",
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the model catalog",
	Long: `List the Hugging Face models that can be selected. Models already
selected in the draft are marked with *.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			selected := map[string]bool{}
			t, err := d.tier(cmd.Context())
			if err != nil {
				return err
			}
			limit := catalog.MaxSelectable(t)
			w, err := d.loadWizard(cmd.Context())
			switch {
			case err == nil:
				for _, m := range w.Config().Models {
					selected[m.ID] = true
				}
			case !errors.Is(err, core.ErrNoDraft):
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Models (%d selected, up to %d):\n", len(selected), limit)
			for _, m := range catalog.Models() {
				mark := " "
				if selected[m.ID] {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %-24s %-26s %-20s %s\n", mark, m.ID, m.Name, m.Type, m.Popularity)
			}
			return nil
		})
	},
}

var modelParamsCmd = &cobra.Command{
	Use:   "params [key=value...]",
	Short: "Show or set model parameters",
	Long: `Show or set the parameters passed to Hugging Face servers.

With --global the values apply to every selected model. With --model they
override the global values for one selected model. Without key=value
arguments the effective parameters are printed.`,
	Example: `  mcpdesk model params --global temperature=0.5
  mcpdesk model params --model sdxl-turbo max_tokens=200`,
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		modelID, _ := cmd.Flags().GetString("model")
		if global == (modelID != "") && len(args) > 0 {
			return fmt.Errorf("pass exactly one of --global or --model")
		}

		pairs := make(map[string]any, len(args))
		keys := make([]string, 0, len(args))
		for _, arg := range args {
			k, v, ok := strings.Cut(arg, "=")
			if !ok || k == "" {
				return fmt.Errorf("invalid parameter %q, want key=value", arg)
			}
			if k == service.ParamToken {
				return fmt.Errorf("the token is set with 'mcpdesk service configure huggingFace --token'")
			}
			pairs[k] = service.ParseValue(v)
			keys = append(keys, k)
		}

		return withWizard(cmd, func(d *deps, w *core.Wizard) error {
			for _, k := range keys {
				if global {
					w.SetGlobalParam(k, pairs[k])
					continue
				}
				if err := w.SetModelParam(modelID, k, pairs[k]); err != nil {
					return err
				}
			}
			printModelParams(cmd, w.Config(), modelID)
			return nil
		})
	},
}

func printModelParams(cmd *cobra.Command, cfg *core.Configuration, modelID string) {
	out := cmd.OutOrStdout()
	show := func(title string, p service.Params) {
		fmt.Fprintf(out, "%s:\n", title)
		for _, k := range p.SortedKeys() {
			fmt.Fprintf(out, "  %s = %s\n", k, service.FormatValue(p[k]))
		}
	}

	if modelID != "" {
		show(modelID, cfg.EffectiveModelParams(modelID))
		return
	}
	show("global", cfg.GlobalParams)
	for _, m := range cfg.Models {
		if len(m.Params) > 0 {
			show(m.ID, cfg.EffectiveModelParams(m.ID))
		}
	}
}

func init() {
	modelParamsCmd.Flags().Bool("global", false, "Set parameters for every model")
	modelParamsCmd.Flags().String("model", "", "Selected model to override")

	modelCmd.AddCommand(modelListCmd)
	modelCmd.AddCommand(modelParamsCmd)
	rootCmd.AddCommand(modelCmd)
}
