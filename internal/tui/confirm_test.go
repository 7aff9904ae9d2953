package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmedMsg struct{}

func shownConfirm() confirmModel {
	return newConfirmModel().show("Deploy \"work\" with 2 servers?", "Deploy", func() tea.Msg { return confirmedMsg{} })
}

func TestConfirmShow(t *testing.T) {
	m := shownConfirm()
	if !m.active {
		t.Fatal("confirm should be active after show")
	}
	if m.focusYes {
		t.Error("focus should start on Cancel")
	}
	if m.action != "Deploy" || m.onConfirm == nil {
		t.Errorf("action = %q, onConfirm nil = %v", m.action, m.onConfirm == nil)
	}
}

func TestConfirmDismiss(t *testing.T) {
	m := shownConfirm().dismiss()
	if m.active || m.message != "" || m.onConfirm != nil {
		t.Errorf("dismiss left state behind: %+v", m)
	}
}

func TestConfirmUpdate(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		confirmed bool
		active    bool
	}{
		{"y confirms", []string{"y"}, true, false},
		{"n cancels", []string{"n"}, false, false},
		{"esc cancels", []string{"esc"}, false, false},
		{"enter on cancel", []string{"enter"}, false, false},
		{"switch then enter", []string{"tab", "enter"}, true, false},
		{"other keys consumed", []string{"q"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := shownConfirm()
			var cmd tea.Cmd
			for _, k := range tt.keys {
				var consumed bool
				m, cmd, consumed = m.update(keyMsg(k))
				if !consumed {
					t.Fatalf("key %q not consumed", k)
				}
			}
			if m.active != tt.active {
				t.Errorf("active = %v, want %v", m.active, tt.active)
			}
			gotConfirmed := false
			if cmd != nil {
				_, gotConfirmed = cmd().(confirmedMsg)
			}
			if gotConfirmed != tt.confirmed {
				t.Errorf("confirmed = %v, want %v", gotConfirmed, tt.confirmed)
			}
		})
	}
}

func TestConfirmUpdate_Inactive(t *testing.T) {
	m := newConfirmModel()
	_, cmd, consumed := m.update(keyMsg("y"))
	if consumed || cmd != nil {
		t.Error("inactive dialog must not consume keys")
	}
}

func TestConfirmView(t *testing.T) {
	if v := newConfirmModel().view(); v != "" {
		t.Errorf("inactive view = %q", v)
	}
	v := shownConfirm().setSize(80, 20).view()
	for _, want := range []string{"Deploy \"work\"", "Deploy", "Cancel"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
