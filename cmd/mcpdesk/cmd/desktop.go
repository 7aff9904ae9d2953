package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/store"
)

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Install servers into Claude Desktop",
	Long: `Write mcpdesk's servers into Claude Desktop's claude_desktop_config.json,
or remove them again. Comments and other settings in the file are kept.`,
}

var desktopInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Add the servers to Claude Desktop",
	Long: `Merge the mcpServers document into Claude Desktop's config.

By default the configuration in progress is installed; it must be valid.
With --id a stored configuration is installed instead. Existing entries
with the same name are skipped unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			doc, err := installDocument(cmd, d)
			if err != nil {
				return err
			}
			if len(doc.MCPServers) == 0 {
				return fmt.Errorf("nothing to install: no configured services")
			}

			force, _ := cmd.Flags().GetBool("force")
			path := d.desktopPath(cmd)
			res, err := core.InstallDesktopConfig(path, doc, core.DesktopInstallOptions{Force: force})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printDesktopResult(out, res)
			if n := res.Count(core.DesktopActionWrote); n > 0 {
				fmt.Fprintf(out, "Wrote %d servers to %s. Restart Claude Desktop to load them.\n", n, path)
			}
			return nil
		})
	},
}

// installDocument picks the stored document named by --id, or the export of
// the draft in progress.
func installDocument(cmd *cobra.Command, d *deps) (core.ExportDocument, error) {
	var doc core.ExportDocument

	if id, _ := cmd.Flags().GetString("id"); id != "" {
		rec, err := d.store.GetConfiguration(cmd.Context(), d.settings.UserID, id)
		if errors.Is(err, store.ErrNotFound) {
			return doc, fmt.Errorf("configuration %s not found", id)
		}
		if err != nil {
			return doc, err
		}
		if rec.Document == "" {
			return doc, fmt.Errorf("configuration %s has no document", id)
		}
		if err := json.Unmarshal([]byte(rec.Document), &doc); err != nil {
			return doc, fmt.Errorf("decoding configuration %s: %w", id, err)
		}
		return doc, nil
	}

	w, err := d.loadWizard(cmd.Context())
	if err != nil {
		return doc, err
	}
	if res := core.Validate(w.Config()); !res.IsValid {
		printProblems(cmd.ErrOrStderr(), res)
		return doc, &core.ValidationFailedError{Result: res}
	}
	return core.GenerateExport(w.Config()), nil
}

var desktopUninstallCmd = &cobra.Command{
	Use:   "uninstall [key...]",
	Short: "Remove servers from Claude Desktop",
	Long: `Remove the named mcpServers entries from Claude Desktop's config. Without
arguments every entry mcpdesk manages is removed (fileSystem, webSearch,
huggingFace and huggingFace_<model>).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			path := d.desktopPath(cmd)
			res, err := core.UninstallDesktopServers(path, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Entries) == 0 {
				fmt.Fprintf(out, "No mcpdesk servers in %s\n", path)
				return nil
			}
			printDesktopResult(out, res)
			return nil
		})
	},
}

func printDesktopResult(out io.Writer, res *core.DesktopResult) {
	for _, e := range res.Entries {
		if e.Message != "" {
			fmt.Fprintf(out, "  %-8s %s (%s)\n", e.Action, e.Key, e.Message)
			continue
		}
		fmt.Fprintf(out, "  %-8s %s\n", e.Action, e.Key)
	}
}

func init() {
	desktopCmd.PersistentFlags().String("path", "", "Claude Desktop config file (default: settings or OS location)")
	desktopInstallCmd.Flags().String("id", "", "Install a stored configuration instead of the draft")
	desktopInstallCmd.Flags().Bool("force", false, "Replace existing entries")

	desktopCmd.AddCommand(desktopInstallCmd)
	desktopCmd.AddCommand(desktopUninstallCmd)
	rootCmd.AddCommand(desktopCmd)
}
