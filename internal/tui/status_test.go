package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
)

func TestStatusShow(t *testing.T) {
	m := newStatusModel()
	m, cmd := m.show("Deployed work (2 servers)", statusSuccess)

	if m.msg != "Deployed work (2 servers)" {
		t.Errorf("msg = %q", m.msg)
	}
	if m.kind != statusSuccess {
		t.Errorf("kind = %d, want statusSuccess", m.kind)
	}
	if m.msgID != 0 || m.nextID != 1 {
		t.Errorf("msgID = %d, nextID = %d, want 0, 1", m.msgID, m.nextID)
	}
	if cmd == nil {
		t.Error("show should return the auto-dismiss timer")
	}
}

func TestStatusShow_ReplacesMessage(t *testing.T) {
	m := newStatusModel()
	m, _ = m.show("first", statusSuccess)
	m, _ = m.show("second", statusError)

	if m.msg != "second" || m.kind != statusError {
		t.Errorf("msg = %q kind = %d", m.msg, m.kind)
	}
	if m.msgID != 1 {
		t.Errorf("msgID = %d, want 1", m.msgID)
	}
}

func TestStatusDismiss_MatchingID(t *testing.T) {
	m := newStatusModel()
	m, _ = m.show("hello", statusSuccess)

	m, _ = m.update(statusDismissMsg{id: m.msgID})
	if m.msg != "" {
		t.Errorf("msg = %q, want dismissed", m.msg)
	}
}

func TestStatusDismiss_StaleID(t *testing.T) {
	m := newStatusModel()
	m, _ = m.show("first", statusSuccess)
	stale := m.msgID
	m, _ = m.show("second", statusWarning)

	m, _ = m.update(statusDismissMsg{id: stale})
	if m.msg != "second" {
		t.Errorf("stale timer dismissed the newer message, msg = %q", m.msg)
	}
}

func TestStatusTask(t *testing.T) {
	m := newStatusModel()

	m, cmd := m.startTask("deploying")
	if m.busy != "deploying" {
		t.Errorf("busy = %q", m.busy)
	}
	if cmd == nil {
		t.Error("first task should start the spinner")
	}

	m, cmd = m.startTask("checking token")
	if cmd != nil {
		t.Error("spinner is already running; no second tick chain")
	}
	if m.busy != "checking token" {
		t.Errorf("busy = %q", m.busy)
	}

	m = m.stopTask()
	if m.busy != "" {
		t.Errorf("busy = %q after stop", m.busy)
	}
}

func TestStatusSpinnerTick_Idle(t *testing.T) {
	m := newStatusModel()
	_, cmd := m.update(spinner.TickMsg{})
	if cmd != nil {
		t.Error("idle status line should let the spinner stop")
	}
}

func TestStatusView(t *testing.T) {
	tests := []struct {
		name string
		kind statusKind
		want string
	}{
		{"success", statusSuccess, "✓ done"},
		{"error", statusError, "✗ done"},
		{"warning", statusWarning, "⚠ done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStatusModel()
			m.width = 80
			m, _ = m.show("done", tt.kind)
			v := m.view("help text")
			if !strings.Contains(v, tt.want) {
				t.Errorf("view = %q, want %q", v, tt.want)
			}
			if strings.Contains(v, "help text") {
				t.Error("message should replace help")
			}
		})
	}
}

func TestStatusView_HelpAndTask(t *testing.T) {
	m := newStatusModel()
	m.width = 80

	if v := m.view("q quit"); v != "q quit" {
		t.Errorf("idle view = %q", v)
	}

	m, _ = m.startTask("deploying")
	v := m.view("q quit")
	if !strings.Contains(v, "q quit") || !strings.Contains(v, "deploying") {
		t.Errorf("view = %q", v)
	}
}
