package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorClay      = lipgloss.Color("#D97757")
	colorLightClay = lipgloss.Color("#F0A987")
	colorGreen     = lipgloss.Color("#10B981")
	colorRed       = lipgloss.Color("#EF4444")
	colorAmber     = lipgloss.Color("#F59E0B")
	colorGray      = lipgloss.Color("#6B7280")
	colorSlate     = lipgloss.Color("#374151")
	colorText      = lipgloss.Color("#D1D5DB")
	colorBright    = lipgloss.Color("#F3F4F6")
	colorCream     = lipgloss.Color("#FFF7DB")
)

// fg is a style with only a foreground color.
func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// badge is text on a colored block, padded by pad cells on each side.
func badge(text, back lipgloss.TerminalColor, pad int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(text).Background(back).Padding(0, pad)
}

// Text.
var (
	normalItemStyle   = fg(colorText)
	selectedItemStyle = fg(colorClay).Bold(true)
	mutedStyle        = fg(colorGray)
	helpStyle         = mutedStyle
	successStyle      = fg(colorGreen)
	warningStyle      = fg(colorAmber)
	errorStyle        = fg(colorRed)
	spinnerStyle      = fg(colorLightClay)
)

// Header: logo, configuration name, tier.
var (
	logoStyle       = badge(lipgloss.Color("#FFFFFF"), colorClay, 1).Bold(true)
	headerNameStyle = fg(colorBright).Bold(true).Padding(0, 1)
	headerHintStyle = mutedStyle
	tierBadgeStyle  = fg(colorLightClay)
)

// Body. Section headers carry no margin; views add their own newlines.
var (
	contentStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSlate).
			Padding(1, 2)
	sectionHeaderStyle = mutedStyle.Bold(true)
	sectionRuleStyle   = fg(colorSlate)
)

// Step indicator.
var (
	stepActiveStyle    = selectedItemStyle
	stepDoneStyle      = successStyle
	stepPendingStyle   = mutedStyle
	stepSeparatorStyle = sectionRuleStyle
)

// Export preview footer.
var (
	previewTitleStyle = badge(colorText, colorSlate, 1).Bold(true)
	previewPctStyle   = badge(colorText, colorSlate, 0)
)

// Deploy confirmation.
var (
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorClay).
			Padding(1, 2)
	dialogButtonStyle       = badge(colorCream, colorGray, 2)
	dialogActiveButtonStyle = badge(colorCream, colorClay, 2).Bold(true)
)

// renderSectionHeader renders "── LABEL ──".
func renderSectionHeader(label string) string {
	rule := sectionRuleStyle.Render("──")
	return rule + sectionHeaderStyle.Render(" "+label+" ") + rule
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
