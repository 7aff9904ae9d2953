package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// answer is what a key press means to an open confirmation.
type answer int

const (
	answerNone answer = iota
	answerAccept
	answerReject
	answerToggle
)

var (
	acceptKey = key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm"))
	rejectKey = key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "cancel"))
	toggleKey = key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab", "shift+tab"))
)

const confirmWidth = 44

// confirmModel asks before an outward-facing action such as a deploy or a
// write to the Claude Desktop config. While open it owns the keyboard.
// The action button starts unfocused.
type confirmModel struct {
	active    bool
	message   string
	action    string
	onConfirm tea.Cmd
	focusYes  bool

	width, height int
}

func newConfirmModel() confirmModel { return confirmModel{} }

func (m confirmModel) show(message, action string, onConfirm tea.Cmd) confirmModel {
	return confirmModel{
		active:    true,
		message:   message,
		action:    action,
		onConfirm: onConfirm,
		width:     m.width,
		height:    m.height,
	}
}

func (m confirmModel) setSize(width, height int) confirmModel {
	m.width, m.height = width, height
	return m
}

func (m confirmModel) dismiss() confirmModel {
	return confirmModel{width: m.width, height: m.height}
}

func (m confirmModel) interpret(msg tea.KeyMsg) answer {
	switch {
	case key.Matches(msg, acceptKey):
		return answerAccept
	case key.Matches(msg, rejectKey), key.Matches(msg, keys.Back):
		return answerReject
	case key.Matches(msg, keys.Enter):
		if m.focusYes {
			return answerAccept
		}
		return answerReject
	case key.Matches(msg, toggleKey):
		return answerToggle
	}
	return answerNone
}

// update reports whether msg was consumed. Accepting returns onConfirm.
func (m confirmModel) update(msg tea.Msg) (confirmModel, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !m.active || !ok {
		return m, nil, false
	}

	switch m.interpret(keyMsg) {
	case answerAccept:
		run := m.onConfirm
		return m.dismiss(), run, true
	case answerReject:
		return m.dismiss(), nil, true
	case answerToggle:
		m.focusYes = !m.focusYes
	}
	return m, nil, true
}

func (m confirmModel) buttons() string {
	label := m.action
	if label == "" {
		label = "Yes"
	}
	yes, no := dialogButtonStyle, dialogActiveButtonStyle
	if m.focusYes {
		yes, no = no, yes
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, yes.Render(label), "  ", no.Render("Cancel"))
}

func (m confirmModel) view() string {
	if !m.active {
		return ""
	}
	question := lipgloss.NewStyle().Width(confirmWidth).Align(lipgloss.Center).Render(m.message)
	box := dialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, question, "", m.buttons()))
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
