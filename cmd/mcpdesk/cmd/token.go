package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the Hugging Face token",
}

var tokenCheckCmd = &cobra.Command{
	Use:   "check [token]",
	Short: "Check a Hugging Face token",
	Long: `Check a Hugging Face token. Without an argument the token from HF_TOKEN
or ~/.mcpdesk/.env is checked. How the check is done follows the tokenCheck
setting: "prefix" (offline heuristic), "http" (asks Hugging Face) or "off".
The result is advisory; it never blocks saving the service.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			out := cmd.OutOrStdout()
			token := ""
			source := "argument"
			if len(args) > 0 {
				token = strings.TrimSpace(args[0])
			} else {
				res, err := core.ResolveToken(d.config.EnvPath())
				if err != nil {
					return err
				}
				if !res.Found() {
					return fmt.Errorf("no token: set HF_TOKEN or run 'mcpdesk service configure huggingFace --token <token>'")
				}
				token, source = res.Value, string(res.Source)
			}

			v := d.settings.TokenValidator()
			if v == nil {
				fmt.Fprintln(out, "Token checks are off (tokenCheck: off).")
				return nil
			}

			res, err := v.Validate(cmd.Context(), token)
			if err != nil {
				return fmt.Errorf("checking token: %w", err)
			}

			fmt.Fprintf(out, "Token %s (from %s)\n", redactToken(token), source)
			switch {
			case res.Valid && res.Username != "":
				color.New(color.FgGreen).Fprint(out, "✓ ")
				fmt.Fprintf(out, "belongs to %s\n", res.Username)
			case res.Valid:
				color.New(color.FgGreen).Fprint(out, "✓ ")
				fmt.Fprintln(out, res.Message)
			default:
				color.New(color.FgYellow).Fprint(out, "⚠ ")
				fmt.Fprintln(out, res.Message)
			}
			if res.Advisory {
				fmt.Fprintln(out, "  (offline check; set tokenCheck to \"http\" to ask Hugging Face)")
			}
			return nil
		})
	},
}

func init() {
	tokenCmd.AddCommand(tokenCheckCmd)
	rootCmd.AddCommand(tokenCmd)
}
