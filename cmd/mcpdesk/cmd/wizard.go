package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/logging"
	"github.com/barysiuk/mcpdesk/internal/tui"
)

const wizardLogFile = "wizard.log"

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Open the interactive configuration wizard",
	Long: `Open the interactive wizard on the configuration in progress, or on a
new one if there is none. Changes are saved as you go.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(cmd, func(d *deps) error {
			w, err := d.loadWizard(cmd.Context())
			if errors.Is(err, core.ErrNoDraft) {
				t, terr := d.tier(cmd.Context())
				if terr != nil {
					return terr
				}
				w = core.NewWizard(core.NewConfiguration(d.settings.UserID, core.DefaultName(time.Now())), t)
			} else if err != nil {
				return err
			}

			// The alternate screen owns the terminal; log to a file instead.
			logPath := filepath.Join(d.config.ConfigDir(), wizardLogFile)
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer func() { _ = logFile.Close() }()
			logger := logging.New(d.logger.GetLevel().String(), logFile)

			app := tui.NewApp(tui.Options{
				Wizard:            w,
				Deployer:          core.NewDeployer(d.store, logger),
				Drafts:            d.drafts,
				Identity:          d.identity,
				Tokens:            d.settings.TokenValidator(),
				EnvPath:           d.config.EnvPath(),
				DesktopConfigPath: d.settings.DesktopConfigPath,
				Logger:            logger,
			})

			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running wizard: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}
