package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/service"
)

func (a *App) updateSelect(msg tea.KeyMsg) tea.Cmd {
	all := service.All()
	switch {
	case key.Matches(msg, keys.Up):
		if a.selectCursor > 0 {
			a.selectCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.selectCursor < len(all)-1 {
			a.selectCursor++
		}
	case key.Matches(msg, keys.Toggle):
		return a.toggleService(all[a.selectCursor].ID())
	case key.Matches(msg, keys.Next), key.Matches(msg, keys.Enter):
		return a.next()
	}
	return nil
}

func (a *App) toggleService(id service.ID) tea.Cmd {
	err := a.wizard.ToggleService(id)
	if errors.Is(err, core.ErrUpgradeRequired) {
		return a.warn(service.MustByID(id).DisplayName() + " requires a subscription. Press t to change tier.")
	}
	if err != nil {
		return a.fail(err)
	}
	return a.persist()
}

func (a App) viewSelect() string {
	cfg := a.wizard.Config()

	var b strings.Builder
	b.WriteString(renderSectionHeader("SERVICES"))
	b.WriteString("\n\n")

	for i, s := range service.All() {
		sc := cfg.Service(s.ID())
		line := checkbox(sc.Enabled) + " " + s.DisplayName()

		var note string
		switch {
		case sc.Configured:
			note = successStyle.Render("configured")
		case !a.wizard.Tier().Allows(sc.RequiresSubscription):
			note = warningStyle.Render("requires subscription")
		case sc.Enabled:
			note = mutedStyle.Render("needs configuring")
		}

		if i == a.selectCursor {
			b.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(normalItemStyle.Render("  " + line))
		}
		b.WriteString("  " + mutedStyle.Render(s.Package()))
		if note != "" {
			b.WriteString("  " + note)
		}
		b.WriteString("\n")
	}
	return b.String()
}
