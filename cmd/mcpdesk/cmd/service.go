package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/service"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Enable and configure MCP services",
}

var serviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			w, err := d.loadWizard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cfg := w.Config()
			for _, s := range service.All() {
				sc := cfg.Service(s.ID())
				fmt.Fprintf(out, "%-12s %-12s %s  (%s)\n", s.ID(), s.DisplayName(), serviceState(w, sc), s.Package())
				for _, k := range sc.Params.SortedKeys() {
					v := sc.Params[k]
					if k == service.ParamToken {
						v = redactToken(sc.Params.String(k))
					}
					fmt.Fprintf(out, "    %s: %s\n", k, service.FormatValue(v))
				}
			}
			return nil
		})
	},
}

var serviceEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setServiceEnabled(cmd, args[0], true)
	},
}

var serviceDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setServiceEnabled(cmd, args[0], false)
	},
}

func setServiceEnabled(cmd *cobra.Command, name string, enabled bool) error {
	id, err := service.ParseID(name)
	if err != nil {
		return err
	}
	return withWizard(cmd, func(d *deps, w *core.Wizard) error {
		out := cmd.OutOrStdout()
		if w.Config().Service(id).Enabled == enabled {
			fmt.Fprintf(out, "%s is already %s\n", id, enabledWord(enabled))
			return nil
		}
		if err := w.ToggleService(id); err != nil {
			if errors.Is(err, core.ErrUpgradeRequired) {
				return fmt.Errorf("%s requires a subscription; run 'mcpdesk tier set basic' to upgrade", id)
			}
			return err
		}
		fmt.Fprintf(out, "%s %s\n", enabledWord(enabled), service.MustByID(id).DisplayName())
		return nil
	})
}

func enabledWord(on bool) string {
	if on {
		return "Enabled"
	}
	return "Disabled"
}

var serviceSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Make an enabled service the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := service.ParseID(args[0])
		if err != nil {
			return err
		}
		return withWizard(cmd, func(d *deps, w *core.Wizard) error {
			if err := w.SetActive(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active service: %s\n", id)
			return nil
		})
	},
}

var serviceConfigureCmd = &cobra.Command{
	Use:   "configure <id>",
	Short: "Edit a service's parameters",
	Long: `Edit the parameters of an enabled service. Flags that do not apply to
the service are rejected. Run 'mcpdesk service save <id>' afterwards.

  fileSystem:  --add-dir, --remove-dir
  webSearch:   --results-count, --safe-search, --trusted-sources
  huggingFace: --token, --model (toggles; repeatable)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := service.ParseID(args[0])
		if err != nil {
			return err
		}
		edits, err := serviceEdits(cmd, id)
		if err != nil {
			return err
		}
		if len(edits) == 0 {
			return fmt.Errorf("nothing to change; see 'mcpdesk service configure --help'")
		}

		return withWizard(cmd, func(d *deps, w *core.Wizard) error {
			for _, edit := range edits {
				if err := edit(w); err != nil {
					return err
				}
			}
			if id == service.HuggingFace {
				if tok, _ := cmd.Flags().GetString("token"); cmd.Flags().Changed("token") {
					if err := core.SaveTokenEnv(d.config.EnvPath(), strings.TrimSpace(tok)); err != nil {
						return fmt.Errorf("saving token: %w", err)
					}
				}
			}

			sc := w.Config().Service(id)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated %s\n", service.MustByID(id).DisplayName())
			if problems := service.MustByID(id).Check(sc.Params); len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintf(out, "  ! %s\n", p)
				}
			} else if !sc.Configured {
				fmt.Fprintf(out, "Ready to save: mcpdesk service save %s\n", id)
			}
			return nil
		})
	},
}

// serviceEdits turns the configure flags into wizard edits for id.
func serviceEdits(cmd *cobra.Command, id service.ID) ([]func(*core.Wizard) error, error) {
	f := cmd.Flags()
	allowed := map[service.ID][]string{
		service.FileSystem:  {"add-dir", "remove-dir"},
		service.WebSearch:   {"results-count", "safe-search", "trusted-sources"},
		service.HuggingFace: {"token", "model"},
	}
	for _, other := range []string{"add-dir", "remove-dir", "results-count", "safe-search", "trusted-sources", "token", "model"} {
		if f.Changed(other) && !containsString(allowed[id], other) {
			return nil, fmt.Errorf("--%s does not apply to %s", other, id)
		}
	}

	params := func(fn func(service.Params) (service.Params, error)) func(*core.Wizard) error {
		return func(w *core.Wizard) error { return w.UpdateParams(id, fn) }
	}

	var edits []func(*core.Wizard) error
	switch id {
	case service.FileSystem:
		add, _ := f.GetStringArray("add-dir")
		for _, dir := range add {
			edits = append(edits, params(func(p service.Params) (service.Params, error) {
				return service.AddDirectory(p, dir)
			}))
		}
		remove, _ := f.GetStringArray("remove-dir")
		for _, dir := range remove {
			edits = append(edits, params(func(p service.Params) (service.Params, error) {
				return service.RemoveDirectory(p, dir), nil
			}))
		}

	case service.WebSearch:
		if f.Changed("results-count") {
			n, _ := f.GetInt("results-count")
			edits = append(edits, params(func(p service.Params) (service.Params, error) {
				return service.SetResultsCount(p, n), nil
			}))
		}
		if f.Changed("safe-search") {
			on, _ := f.GetBool("safe-search")
			edits = append(edits, params(func(p service.Params) (service.Params, error) {
				return service.SetSafeSearch(p, on), nil
			}))
		}
		if f.Changed("trusted-sources") {
			on, _ := f.GetBool("trusted-sources")
			edits = append(edits, params(func(p service.Params) (service.Params, error) {
				return service.SetTrustedSources(p, on), nil
			}))
		}

	case service.HuggingFace:
		if f.Changed("token") {
			tok, _ := f.GetString("token")
			edits = append(edits, params(func(p service.Params) (service.Params, error) {
				return service.SetToken(p, tok), nil
			}))
		}
		models, _ := f.GetStringArray("model")
		for _, m := range models {
			edits = append(edits, func(w *core.Wizard) error {
				err := w.ToggleModel(m)
				if errors.Is(err, service.ErrTierLimitExceeded) {
					return fmt.Errorf("%w; run 'mcpdesk tier set complete' to select more", err)
				}
				return err
			})
		}
	}
	return edits, nil
}

var serviceSaveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Mark a service configured",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := service.ParseID(args[0])
		if err != nil {
			return err
		}
		return withWizard(cmd, func(d *deps, w *core.Wizard) error {
			if err := w.SaveService(id); err != nil {
				var invalid *service.InvalidParamsError
				if errors.As(err, &invalid) {
					return fmt.Errorf("cannot save %s: %s", id, strings.Join(invalid.Problems, " "))
				}
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved %s\n", service.MustByID(id).DisplayName())
			if pending := w.Config().UnconfiguredServices(); len(pending) > 0 {
				_ = w.SetActive(pending[0])
				fmt.Fprintf(out, "Still to configure: %s\n", joinIDs(pending))
			}
			return nil
		})
	},
}

var serviceBrowseCmd = &cobra.Command{
	Use:   "browse [dir]",
	Short: "List directories to add to the File System service",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := ""
		if len(args) > 0 {
			root = args[0]
		}
		hidden, _ := cmd.Flags().GetBool("hidden")
		dirs, err := service.Browse(cmd.Context(), service.OSDirectoryLister{ShowHidden: hidden}, root)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(dirs) == 0 {
			fmt.Fprintln(out, "No directories found.")
			return nil
		}
		for _, dir := range dirs {
			fmt.Fprintln(out, dir)
		}
		return nil
	},
}

func init() {
	f := serviceConfigureCmd.Flags()
	f.StringArray("add-dir", nil, "Directory to add (repeatable)")
	f.StringArray("remove-dir", nil, "Directory to remove (repeatable)")
	f.Int("results-count", service.DefaultResultsCount, "Web Search results per query (1-10)")
	f.Bool("safe-search", true, "Enable Web Search safe search")
	f.Bool("trusted-sources", false, "Prefer trusted sources (not exported yet)")
	f.String("token", "", "Hugging Face API token")
	f.StringArray("model", nil, "Hugging Face model to select or deselect (repeatable)")

	serviceBrowseCmd.Flags().Bool("hidden", false, "Include hidden directories")

	serviceCmd.AddCommand(serviceListCmd)
	serviceCmd.AddCommand(serviceEnableCmd)
	serviceCmd.AddCommand(serviceDisableCmd)
	serviceCmd.AddCommand(serviceSelectCmd)
	serviceCmd.AddCommand(serviceConfigureCmd)
	serviceCmd.AddCommand(serviceSaveCmd)
	serviceCmd.AddCommand(serviceBrowseCmd)
	rootCmd.AddCommand(serviceCmd)
}
