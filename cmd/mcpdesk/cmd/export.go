package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the mcpServers document",
	Long: `Print the Claude Desktop mcpServers document for the configuration in
progress. Only enabled and saved services are included. The Hugging Face
token is referenced as ENV:HF_TOKEN, never written out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			w, err := d.loadWizard(cmd.Context())
			if err != nil {
				return err
			}
			doc := core.GenerateExport(w.Config())
			data, err := core.MarshalExport(doc)
			if err != nil {
				return err
			}

			if copyFlag, _ := cmd.Flags().GetBool("copy"); copyFlag {
				if err := core.CopyExport(core.SystemClipboard{}, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Copied %d servers to the clipboard\n", len(doc.MCPServers))
			}

			if path, _ := cmd.Flags().GetString("output"); path != "" {
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var exportSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the mcpServers document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := core.ExportSchema()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	exportCmd.Flags().Bool("copy", false, "Also copy the document to the clipboard")
	exportCmd.Flags().StringP("output", "o", "", "Write the document to a file instead of stdout")
	exportCmd.AddCommand(exportSchemaCmd)
	rootCmd.AddCommand(exportCmd)
}
