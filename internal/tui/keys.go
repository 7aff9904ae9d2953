package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keybindings for the TUI.
type keyMap struct {
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Next     key.Binding
	Toggle   key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Save     key.Binding
	Add      key.Binding
	Delete   key.Binding
	Edit     key.Binding
	Increase key.Binding
	Decrease key.Binding
	Tier     key.Binding
	Deploy   key.Binding
	Copy     key.Binding
	Install  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("k/up", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/down", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next step"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space/x", "toggle"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next service"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev service"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save service"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add directory"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "remove"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit token"),
	),
	Increase: key.NewBinding(
		key.WithKeys("+", "=", "right", "l"),
		key.WithHelp("+/-", "adjust"),
	),
	Decrease: key.NewBinding(
		key.WithKeys("-", "left", "h"),
	),
	Tier: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "change tier"),
	),
	Deploy: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "deploy"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy JSON"),
	),
	Install: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "install to Claude Desktop"),
	),
}

// ---------------------------------------------------------------------------
// Per-step help keymaps for the help.Model component.
// Each implements help.KeyMap (ShortHelp + FullHelp).
// ---------------------------------------------------------------------------

// selectHelpKeyMap is shown on the service selection step.
type selectHelpKeyMap struct{}

func (k selectHelpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Up, keys.Down, keys.Toggle, keys.Next, keys.Tier, keys.Quit}
}

func (k selectHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// configureHelpKeyMap is shown on the configure step. The row-specific keys
// depend on which service is being edited.
type configureHelpKeyMap struct {
	active  string
	editing bool
}

func (k configureHelpKeyMap) ShortHelp() []key.Binding {
	if k.editing {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	bindings := []key.Binding{keys.Up, keys.Down, keys.NextTab}
	switch k.active {
	case "fileSystem":
		bindings = append(bindings, keys.Add, keys.Delete)
	case "webSearch":
		bindings = append(bindings, keys.Increase, keys.Toggle)
	case "huggingFace":
		bindings = append(bindings, keys.Edit, keys.Toggle)
	}
	return append(bindings, keys.Save, keys.Next, keys.Back)
}

func (k configureHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// validateHelpKeyMap is shown on the validate step.
type validateHelpKeyMap struct {
	valid bool
}

func (k validateHelpKeyMap) ShortHelp() []key.Binding {
	if !k.valid {
		return []key.Binding{keys.Up, keys.Down, keys.Back, keys.Quit}
	}
	return []key.Binding{keys.Up, keys.Down, keys.Deploy, keys.Copy, keys.Back, keys.Quit}
}

func (k validateHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// deployHelpKeyMap is shown after a successful deploy.
type deployHelpKeyMap struct{}

func (k deployHelpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Up, keys.Down, keys.Copy, keys.Install, keys.Back, keys.Quit}
}

func (k deployHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
