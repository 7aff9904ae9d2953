package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// statusKind defines the visual style of a transient status message.
type statusKind int

const (
	statusSuccess statusKind = iota
	statusError
	statusWarning
)

// statusAutoDismiss is how long transient messages stay visible.
const statusAutoDismiss = 3 * time.Second

// statusModel is the line at the bottom of the TUI.
//
// Layout: [left: message, or help when there is none] [right: busy task]
//
// Messages auto-dismiss after statusAutoDismiss. The right zone shows a
// spinner and a label while background work (deploy, token check) runs.
type statusModel struct {
	width int

	msg    string
	kind   statusKind
	msgID  int // Monotonic; used to ignore stale dismiss timers.
	nextID int

	busy    string // Label of the running task, "" when idle.
	spinner spinner.Model
}

// statusDismissMsg is sent by the auto-dismiss timer.
type statusDismissMsg struct {
	id int
}

func newStatusModel() statusModel {
	return statusModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
	}
}

// show displays a transient message, replacing the current one.
func (m statusModel) show(text string, kind statusKind) (statusModel, tea.Cmd) {
	m.msg = text
	m.kind = kind
	m.msgID = m.nextID
	m.nextID++

	id := m.msgID
	return m, tea.Tick(statusAutoDismiss, func(_ time.Time) tea.Msg {
		return statusDismissMsg{id: id}
	})
}

func (m statusModel) dismiss() statusModel {
	m.msg = ""
	return m
}

// startTask shows label in the right zone until stopTask.
func (m statusModel) startTask(label string) (statusModel, tea.Cmd) {
	wasIdle := m.busy == ""
	m.busy = label
	if wasIdle {
		return m, m.spinner.Tick
	}
	return m, nil
}

func (m statusModel) stopTask() statusModel {
	m.busy = ""
	return m
}

func (m statusModel) update(msg tea.Msg) (statusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statusDismissMsg:
		if msg.id == m.msgID {
			m = m.dismiss()
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy != "" {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// view renders the status line. An active message replaces the help text.
func (m statusModel) view(helpContent string) string {
	left := m.renderMessage()
	if left == "" {
		left = helpContent
	}
	right := m.renderTask()
	if right == "" {
		return left
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + fmt.Sprintf("%*s%s", gap, "", right)
}

func (m statusModel) renderMessage() string {
	if m.msg == "" {
		return ""
	}
	switch m.kind {
	case statusSuccess:
		return " " + successStyle.Render("✓ "+m.msg)
	case statusError:
		return " " + errorStyle.Render("✗ "+m.msg)
	case statusWarning:
		return " " + warningStyle.Render("⚠ "+m.msg)
	}
	return ""
}

func (m statusModel) renderTask() string {
	if m.busy == "" {
		return ""
	}
	return m.spinner.View() + mutedStyle.Render(m.busy)
}
