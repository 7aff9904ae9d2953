package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/barysiuk/mcpdesk/internal/core"
)

// renderStepIndicator draws the breadcrumb strip for the wizard steps:
//
//	Select services → Configure services → Validate → Deploy
//	                  ──────────────────
//
// Steps before the current one are marked done.
func renderStepIndicator(current core.Step) string {
	all := core.Steps()
	idx := current.Index()

	sep := stepSeparatorStyle.Render(" → ")
	parts := make([]string, len(all))
	offset := 0
	for i, st := range all {
		label := st.Title()
		switch {
		case i < idx:
			parts[i] = stepDoneStyle.Render(label)
		case i == idx:
			parts[i] = stepActiveStyle.Render(label)
		default:
			parts[i] = stepPendingStyle.Render(label)
		}
		if i < idx {
			offset += lipgloss.Width(label) + lipgloss.Width(sep)
		}
	}

	breadcrumb := strings.Join(parts, sep)
	if idx < 0 {
		return breadcrumb
	}
	underline := stepActiveStyle.Render(strings.Repeat("─", lipgloss.Width(current.Title())))
	return breadcrumb + "\n" + strings.Repeat(" ", offset) + underline
}
