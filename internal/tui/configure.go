package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/catalog"
	"github.com/barysiuk/mcpdesk/internal/core/service"
)

const (
	// tokenDebounce is how long typing must pause before a token check runs.
	tokenDebounce = 500 * time.Millisecond

	tokenCheckTimeout = 10 * time.Second
)

// rowKind identifies one editable line of a service form.
type rowKind int

const (
	rowNone rowKind = iota
	rowDirectory
	rowAddDirectory
	rowResultsCount
	rowSafeSearch
	rowTrustedSources
	rowToken
	rowModel
)

// formRow is one line of the active service's form. value holds the
// directory path or model ID for list rows.
type formRow struct {
	kind  rowKind
	value string
}

// tokenCheck is the last completed token check.
type tokenCheck struct {
	token  string
	result service.TokenResult
	err    error
}

// formModel is the configure step's cursor, text input and token check
// state. The service params themselves live in the wizard.
type formModel struct {
	cursor  int
	input   textinput.Model
	target  rowKind // row being edited, rowNone when the input is blurred
	seq     int     // tags debounce ticks; only the latest one runs
	pending string  // token being checked, "" when idle
	check   *tokenCheck
}

// tokenDebounceMsg fires tokenDebounce after a token edit.
type tokenDebounceMsg struct {
	seq   int
	token string
}

// tokenCheckedMsg carries a token check result.
type tokenCheckedMsg struct {
	token  string
	result service.TokenResult
	err    error
}

func newFormModel() formModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 512
	return formModel{input: ti}
}

func (m formModel) editing() bool { return m.target != rowNone }

// reset clears the cursor and any edit in progress. Token check state is
// kept; it is keyed by token value.
func (m formModel) reset() formModel {
	m = m.stopEditing()
	m.cursor = 0
	return m
}

func (m formModel) clamp(rows int) formModel {
	if m.cursor >= rows {
		m.cursor = max(0, rows-1)
	}
	return m
}

func (m formModel) startEditing(target rowKind, value string) (formModel, tea.Cmd) {
	m.target = target
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch target {
	case rowToken:
		m.input.Placeholder = "hf_..."
		m.input.EchoMode = textinput.EchoPassword
	default:
		m.input.Placeholder = "/path/to/directory"
		m.input.EchoMode = textinput.EchoNormal
	}
	return m, m.input.Focus()
}

func (m formModel) stopEditing() formModel {
	m.target = rowNone
	m.input.Blur()
	m.input.Reset()
	return m
}

// formRows lists the editable rows of the active service.
func formRows(w *core.Wizard) []formRow {
	id := w.ActiveService()
	sc := w.Config().Service(id)
	if sc == nil {
		return nil
	}

	switch id {
	case service.FileSystem:
		var rows []formRow
		for _, d := range service.Directories(sc.Params) {
			rows = append(rows, formRow{kind: rowDirectory, value: d})
		}
		return append(rows, formRow{kind: rowAddDirectory})
	case service.WebSearch:
		return []formRow{{kind: rowResultsCount}, {kind: rowSafeSearch}, {kind: rowTrustedSources}}
	case service.HuggingFace:
		rows := []formRow{{kind: rowToken}}
		for _, m := range catalog.Models() {
			rows = append(rows, formRow{kind: rowModel, value: m.ID})
		}
		return rows
	}
	return nil
}

// --- Update ---

func (a *App) updateConfigure(msg tea.KeyMsg) tea.Cmd {
	rows := formRows(a.wizard)
	a.form = a.form.clamp(len(rows))
	var row formRow
	if a.form.cursor < len(rows) {
		row = rows[a.form.cursor]
	}
	active := a.wizard.ActiveService()

	switch {
	case key.Matches(msg, keys.Next):
		return a.next()

	case key.Matches(msg, keys.Up):
		if a.form.cursor > 0 {
			a.form.cursor--
		}
	case key.Matches(msg, keys.Down):
		if a.form.cursor < len(rows)-1 {
			a.form.cursor++
		}

	case key.Matches(msg, keys.NextTab):
		return a.switchService(1)
	case key.Matches(msg, keys.PrevTab):
		return a.switchService(-1)

	case key.Matches(msg, keys.Save):
		return a.saveService(active)

	case active == service.FileSystem && key.Matches(msg, keys.Add):
		var cmd tea.Cmd
		a.form, cmd = a.form.startEditing(rowAddDirectory, "")
		return cmd
	case row.kind == rowDirectory && key.Matches(msg, keys.Delete):
		return a.edit(active, func(p service.Params) (service.Params, error) {
			return service.RemoveDirectory(p, row.value), nil
		})

	case active == service.HuggingFace && key.Matches(msg, keys.Edit):
		return a.editToken()

	case row.kind == rowResultsCount && key.Matches(msg, keys.Increase):
		return a.adjustResults(1)
	case row.kind == rowResultsCount && key.Matches(msg, keys.Decrease):
		return a.adjustResults(-1)

	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
		return a.activateRow(active, row)
	}
	return nil
}

func (a *App) activateRow(active service.ID, row formRow) tea.Cmd {
	sc := a.wizard.Config().Service(active)
	switch row.kind {
	case rowAddDirectory:
		var cmd tea.Cmd
		a.form, cmd = a.form.startEditing(rowAddDirectory, "")
		return cmd
	case rowSafeSearch:
		on := !sc.Params.Bool(service.ParamSafeSearch, true)
		return a.edit(active, func(p service.Params) (service.Params, error) {
			return service.SetSafeSearch(p, on), nil
		})
	case rowTrustedSources:
		on := !sc.Params.Bool(service.ParamUseTrustedSources, false)
		return a.edit(active, func(p service.Params) (service.Params, error) {
			return service.SetTrustedSources(p, on), nil
		})
	case rowToken:
		return a.editToken()
	case rowModel:
		if err := a.wizard.ToggleModel(row.value); err != nil {
			if errors.Is(err, service.ErrTierLimitExceeded) {
				return a.warn(err.Error() + ". Press t to change tier.")
			}
			return a.fail(err)
		}
		return a.persist()
	}
	return nil
}

func (a *App) updateEditing(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.form = a.form.stopEditing()
		return *a, nil
	case tea.KeyEnter:
		cmd := a.commitEdit()
		return *a, cmd
	}

	before := a.form.input.Value()
	var cmd tea.Cmd
	a.form.input, cmd = a.form.input.Update(msg)
	if a.form.target == rowToken && a.form.input.Value() != before {
		cmd = tea.Batch(cmd, a.scheduleTokenCheck(strings.TrimSpace(a.form.input.Value()), tokenDebounce))
	}
	return *a, cmd
}

func (a *App) commitEdit() tea.Cmd {
	value := a.form.input.Value()
	target := a.form.target
	a.form = a.form.stopEditing()

	switch target {
	case rowAddDirectory:
		return a.edit(service.FileSystem, func(p service.Params) (service.Params, error) {
			return service.AddDirectory(p, value)
		})
	case rowToken:
		token := strings.TrimSpace(value)
		cmd := a.edit(service.HuggingFace, func(p service.Params) (service.Params, error) {
			return service.SetToken(p, token), nil
		})
		cmds := []tea.Cmd{cmd, a.scheduleTokenCheck(token, 0)}
		// Drafts never hold the token, so it goes to the env file right away.
		if a.wizard.Config().Service(service.HuggingFace).Params.String(service.ParamToken) == token {
			cmds = append(cmds, a.saveTokenCmd(token))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (a *App) editToken() tea.Cmd {
	sc := a.wizard.Config().Service(service.HuggingFace)
	var cmd tea.Cmd
	a.form, cmd = a.form.startEditing(rowToken, sc.Params.String(service.ParamToken))
	return cmd
}

func (a *App) adjustResults(delta int) tea.Cmd {
	return a.edit(service.WebSearch, func(p service.Params) (service.Params, error) {
		return service.SetResultsCount(p, p.Int(service.ParamResultsCount, service.DefaultResultsCount)+delta), nil
	})
}

// edit applies an editor through the wizard and saves the draft.
func (a *App) edit(id service.ID, fn func(service.Params) (service.Params, error)) tea.Cmd {
	if err := a.wizard.UpdateParams(id, fn); err != nil {
		return a.fail(err)
	}
	a.form = a.form.clamp(len(formRows(a.wizard)))
	return a.persist()
}

func (a *App) saveService(id service.ID) tea.Cmd {
	err := a.wizard.SaveService(id)
	var invalid *service.InvalidParamsError
	switch {
	case errors.As(err, &invalid):
		return a.fail(fmt.Errorf("%s", strings.Join(invalid.Problems, " ")))
	case err != nil:
		return a.fail(err)
	}

	s := service.MustByID(id)
	cmds := []tea.Cmd{a.persist()}
	if id == service.HuggingFace {
		cmds = append(cmds, a.saveTokenCmd(a.wizard.Config().Service(id).Params.String(service.ParamToken)))
	}
	var cmd tea.Cmd
	a.status, cmd = a.status.show(s.DisplayName()+" saved", statusSuccess)
	cmds = append(cmds, cmd)

	// Move on to the next service that still needs attention.
	if pending := a.wizard.Config().UnconfiguredServices(); len(pending) > 0 {
		_ = a.wizard.SetActive(pending[0])
		a.form = a.form.reset()
	}
	return tea.Batch(cmds...)
}

func (a *App) switchService(delta int) tea.Cmd {
	enabled := a.wizard.Config().EnabledServices()
	if len(enabled) == 0 {
		return nil
	}
	idx := 0
	for i, id := range enabled {
		if id == a.wizard.ActiveService() {
			idx = i
		}
	}
	idx = (idx + delta + len(enabled)) % len(enabled)
	if err := a.wizard.SetActive(enabled[idx]); err != nil {
		return a.fail(err)
	}
	a.form = a.form.reset()
	return a.persist()
}

// --- Token checks ---

// currentToken is the token on screen: the input while it is being edited,
// otherwise the stored param.
func (a App) currentToken() string {
	if a.form.target == rowToken {
		return strings.TrimSpace(a.form.input.Value())
	}
	sc := a.wizard.Config().Service(service.HuggingFace)
	if sc == nil || !sc.Enabled {
		return ""
	}
	return sc.Params.String(service.ParamToken)
}

// scheduleTokenCheck tags a new check. With a delay the check only runs if no
// newer edit arrives first.
func (a *App) scheduleTokenCheck(token string, delay time.Duration) tea.Cmd {
	if a.opts.Tokens == nil || token == "" {
		return nil
	}
	a.form.seq++
	msg := tokenDebounceMsg{seq: a.form.seq, token: token}
	if delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return msg })
}

func (a App) handleTokenDebounce(msg tokenDebounceMsg) (App, tea.Cmd) {
	if msg.seq != a.form.seq || msg.token != a.currentToken() {
		return a, nil
	}
	if a.form.check != nil && a.form.check.token == msg.token {
		return a, nil
	}

	a.form.pending = msg.token
	var spin tea.Cmd
	a.status, spin = a.status.startTask("checking token")

	v := a.opts.Tokens
	token := msg.token
	return a, tea.Batch(spin, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), tokenCheckTimeout)
		defer cancel()
		res, err := v.Validate(ctx, token)
		return tokenCheckedMsg{token: token, result: res, err: err}
	})
}

// handleTokenChecked stores a result unless the token has changed since the
// check started.
func (a App) handleTokenChecked(msg tokenCheckedMsg) App {
	if msg.token == a.form.pending {
		a.form.pending = ""
		a.status = a.status.stopTask()
	}
	if msg.token != a.currentToken() {
		return a
	}
	a.form.check = &tokenCheck{token: msg.token, result: msg.result, err: msg.err}
	return a
}

// --- View ---

func (a App) viewConfigure() string {
	cfg := a.wizard.Config()
	active := a.wizard.ActiveService()

	var tabs []string
	for _, id := range cfg.EnabledServices() {
		s := service.MustByID(id)
		label := s.DisplayName()
		if cfg.Service(id).Configured {
			label += " ✓"
		}
		if id == active {
			tabs = append(tabs, selectedItemStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, normalItemStyle.Render(" "+label+" "))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(tabs, mutedStyle.Render(" │ ")))
	b.WriteString("\n\n")

	sc := cfg.Service(active)
	if sc == nil {
		b.WriteString(mutedStyle.Render("Press tab to pick a service to configure."))
		return b.String()
	}

	rows := formRows(a.wizard)
	for i, row := range rows {
		if row.kind == rowModel && (i == 0 || rows[i-1].kind != rowModel) {
			selected := len(service.SelectedModels(sc.Params))
			b.WriteString("\n" + renderSectionHeader(fmt.Sprintf("MODELS %d/%d", selected, catalog.MaxSelectable(a.wizard.Tier()))) + "\n")
		}
		b.WriteString(a.renderRow(sc, row, i == a.form.cursor))
		b.WriteString("\n")
		if row.kind == rowToken {
			if line := a.renderTokenStatus(); line != "" {
				b.WriteString("    " + line + "\n")
			}
		}
	}

	if a.form.target == rowAddDirectory {
		b.WriteString("\n" + a.form.input.View() + "\n")
	}

	b.WriteString("\n")
	if sc.Configured {
		b.WriteString(successStyle.Render("Saved"))
	} else if problems := service.MustByID(active).Check(sc.Params); len(problems) > 0 {
		b.WriteString(warningStyle.Render(strings.Join(problems, " ")))
	} else {
		b.WriteString(mutedStyle.Render("Not saved yet. Press s to save."))
	}
	return b.String()
}

func (a App) renderRow(sc *service.Config, row formRow, selected bool) string {
	var line string
	switch row.kind {
	case rowDirectory:
		line = shortenPath(row.value)
		if dirs := service.Directories(sc.Params); len(dirs) > 1 && dirs[0] == row.value {
			line += mutedStyle.Render("  (exported)")
		}
	case rowAddDirectory:
		line = "+ Add directory"
	case rowResultsCount:
		line = fmt.Sprintf("Results count    ‹ %d ›", sc.Params.Int(service.ParamResultsCount, service.DefaultResultsCount))
	case rowSafeSearch:
		line = "Safe search      " + checkbox(sc.Params.Bool(service.ParamSafeSearch, true))
	case rowTrustedSources:
		line = "Trusted sources  " + checkbox(sc.Params.Bool(service.ParamUseTrustedSources, false)) +
			mutedStyle.Render("  (not exported yet)")
	case rowToken:
		if a.form.target == rowToken {
			line = "API token  " + a.form.input.View()
		} else {
			line = "API token  " + maskToken(sc.Params.String(service.ParamToken))
		}
	case rowModel:
		m, _ := catalog.ByID(row.value)
		on := false
		for _, id := range service.SelectedModels(sc.Params) {
			if id == m.ID {
				on = true
			}
		}
		line = checkbox(on) + " " + m.Name + mutedStyle.Render(fmt.Sprintf("  %s · %s", m.Type, m.Popularity))
	}

	if selected {
		return selectedItemStyle.Render("> ") + line
	}
	return "  " + line
}

func (a App) renderTokenStatus() string {
	tok := a.currentToken()
	if tok == "" || a.opts.Tokens == nil {
		return ""
	}
	if a.form.pending == tok {
		return mutedStyle.Render("checking…")
	}
	c := a.form.check
	if c == nil || c.token != tok {
		return ""
	}
	switch {
	case c.err != nil:
		return warningStyle.Render("Could not verify token: " + c.err.Error())
	case c.result.Valid && c.result.Username != "":
		return successStyle.Render("✓ Token belongs to " + c.result.Username)
	case c.result.Valid:
		return successStyle.Render("✓ " + c.result.Message)
	default:
		return warningStyle.Render("⚠ " + c.result.Message)
	}
}

// maskToken shows enough of a token to recognise it.
func maskToken(token string) string {
	switch {
	case token == "":
		return mutedStyle.Render("not set (e to edit)")
	case len(token) < 8:
		return strings.Repeat("•", len(token))
	default:
		return token[:3] + strings.Repeat("•", 6) + token[len(token)-4:]
	}
}
