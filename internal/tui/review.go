package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/barysiuk/mcpdesk/internal/core"
)

// updateReview handles the validate and deploy steps, which share the
// export preview.
func (a *App) updateReview(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Deploy):
		if !a.result.IsValid {
			return a.warn("Fix the problems above before deploying.")
		}
		name := a.wizard.Config().Name
		a.confirm = a.confirm.show(fmt.Sprintf("Deploy %q with %d servers?", name, len(a.doc.MCPServers)), "Deploy", a.startDeploy())
		return nil

	case key.Matches(msg, keys.Copy):
		if len(a.doc.MCPServers) == 0 {
			return a.warn("Nothing to copy yet.")
		}
		return a.copyCmd()

	case a.wizard.Step() == core.StepDeploy && key.Matches(msg, keys.Install):
		a.confirm = a.confirm.show(
			fmt.Sprintf("Write %d servers to %s?", len(a.doc.MCPServers), shortenPath(a.opts.DesktopConfigPath)),
			"Install", a.installCmd())
		return nil
	}

	var cmd tea.Cmd
	a.preview, cmd = a.preview.Update(msg)
	return cmd
}

// startDeploy returns the command run when the deploy is confirmed.
func (a *App) startDeploy() tea.Cmd {
	deploy := a.deployCmd()
	return func() tea.Msg { return deployStartMsg{run: deploy} }
}

// deployStartMsg marks the wizard busy before the deploy itself runs.
type deployStartMsg struct {
	run tea.Cmd
}

func (a App) handleDeployStart(msg deployStartMsg) (App, tea.Cmd) {
	a.deploying = true
	var spin tea.Cmd
	a.status, spin = a.status.startTask("deploying")
	return a, tea.Batch(spin, msg.run)
}

func (a App) viewReview(height int) string {
	var b strings.Builder

	if a.wizard.Step() == core.StepDeploy {
		cfg := a.wizard.Config()
		b.WriteString(successStyle.Render("✓ Deployed " + cfg.Name))
		b.WriteString(mutedStyle.Render("  " + cfg.ID))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Copy the JSON or install it into " + shortenPath(a.opts.DesktopConfigPath)))
		b.WriteString("\n")
	} else if a.result.IsValid {
		b.WriteString(successStyle.Render("✓ Configuration is valid"))
		b.WriteString("\n")
	} else {
		for _, e := range a.result.Errors {
			b.WriteString(errorStyle.Render("✗ " + e))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	title := previewTitleStyle.Render(" claude_desktop_config.json ")
	b.WriteString(title)
	b.WriteString("\n")

	if a.previewLoading {
		b.WriteString(mutedStyle.Render("Rendering preview..."))
		return b.String()
	}

	// Breadcrumb (2 lines + blank) sits above the body; keep one line for the
	// scroll indicator.
	used := 3 + lipgloss.Height(b.String()) + 1
	vp := a.preview
	vp.Height = max(1, height-used)
	b.WriteString(vp.View())
	b.WriteString("\n")
	b.WriteString(previewPctStyle.Render(fmt.Sprintf(" %3.0f%% ", vp.ScrollPercent()*100)))
	return b.String()
}

// shortenPath replaces the home directory prefix with ~.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Base(path)
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
