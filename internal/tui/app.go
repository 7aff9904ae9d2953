package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/barysiuk/mcpdesk/internal/core"
	"github.com/barysiuk/mcpdesk/internal/core/service"
	"github.com/barysiuk/mcpdesk/internal/core/tier"
)

// deployTimeout bounds one deploy attempt.
const deployTimeout = 30 * time.Second

// Options wires the App to the core services.
type Options struct {
	Wizard   *core.Wizard
	Deployer *core.Deployer
	Drafts   *core.DraftStore

	// Identity persists tier changes. Optional.
	Identity core.Identity

	// Tokens checks Hugging Face tokens as they are typed. Nil disables checks.
	Tokens service.TokenValidator

	Clipboard         core.Clipboard
	EnvPath           string // token env file, "" to skip writing it
	DesktopConfigPath string
	Logger            zerolog.Logger
}

// App is the root Bubble Tea model for the configuration wizard.
type App struct {
	opts   Options
	wizard *core.Wizard
	logger zerolog.Logger

	width  int
	height int
	ready  bool

	// Select step.
	selectCursor int

	// Configure step.
	form formModel

	// Validate and deploy steps.
	result          core.Result
	doc             core.ExportDocument
	preview         viewport.Model
	previewSeq      int
	previewLoading  bool
	glamourRenderer *glamour.TermRenderer
	deploying       bool

	help    help.Model
	status  statusModel
	confirm confirmModel
}

// NewApp creates the root model.
func NewApp(opts Options) App {
	h := help.New()
	h.ShortSeparator = "  |  "

	if opts.Clipboard == nil {
		opts.Clipboard = core.SystemClipboard{}
	}

	a := App{
		opts:    opts,
		wizard:  opts.Wizard,
		logger:  opts.Logger.With().Str("component", "tui").Logger(),
		form:    newFormModel(),
		preview: viewport.New(0, 0),
		help:    h,
		status:  newStatusModel(),
		confirm: newConfirmModel(),
	}
	a.result = core.Validate(a.wizard.Config())
	a.doc = core.GenerateExport(a.wizard.Config())
	return a
}

// --- Messages ---

// startedMsg triggers the first render-dependent work after Init.
type startedMsg struct{}

type errMsg struct {
	err error
}

type statusMsg struct {
	text string
	kind statusKind
}

type deployDoneMsg struct {
	cfg *core.Configuration
	doc core.ExportDocument
	err error
}

// previewRenderedMsg carries the glamour output for the export preview.
// seq identifies the request so stale renders are dropped.
type previewRenderedMsg struct {
	seq      int
	content  string
	renderer *glamour.TermRenderer
}

// --- Init / Update / View ---

func (a App) Init() tea.Cmd {
	return func() tea.Msg { return startedMsg{} }
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.status.width = msg.Width
		a.propagateSize()
		a.glamourRenderer = nil
		if a.reviewing() {
			cmd := a.renderPreviewCmd()
			return a, cmd
		}
		return a, nil

	case startedMsg:
		var cmds []tea.Cmd
		if a.reviewing() {
			cmds = append(cmds, a.refreshValidation())
		}
		if tok := a.currentToken(); tok != "" {
			cmds = append(cmds, a.scheduleTokenCheck(tok, 0))
		}
		if a.wizard.Config().Status == core.StatusFailed {
			var cmd tea.Cmd
			a.status, cmd = a.status.show("The last deploy failed. Press enter to retry.", statusWarning)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tokenDebounceMsg:
		return a.handleTokenDebounce(msg)

	case tokenCheckedMsg:
		return a.handleTokenChecked(msg), nil

	case deployStartMsg:
		return a.handleDeployStart(msg)

	case deployDoneMsg:
		return a.handleDeployDone(msg)

	case previewRenderedMsg:
		if msg.seq != a.previewSeq {
			return a, nil
		}
		a.previewLoading = false
		a.preview.SetContent(msg.content)
		if msg.renderer != nil {
			a.glamourRenderer = msg.renderer
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.status, cmd = a.status.update(msg)
		return a, cmd

	case statusDismissMsg:
		var cmd tea.Cmd
		a.status, cmd = a.status.update(msg)
		return a, cmd

	case statusMsg:
		a.status = a.status.stopTask()
		var cmd tea.Cmd
		a.status, cmd = a.status.show(msg.text, msg.kind)
		return a, cmd

	case errMsg:
		a.status = a.status.stopTask()
		a.logger.Warn().Err(msg.err).Msg("background action failed")
		var cmd tea.Cmd
		a.status, cmd = a.status.show(msg.err.Error(), statusError)
		return a, cmd

	case tea.KeyMsg:
		if a.confirm.active {
			var cmd tea.Cmd
			a.confirm, cmd, _ = a.confirm.update(msg)
			return a, cmd
		}
		if a.deploying {
			return a, nil
		}
		if a.form.editing() {
			return a.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Tier):
			cmd := a.cycleTier()
			return a, cmd
		case key.Matches(msg, keys.Back):
			cmd := a.back()
			return a, cmd
		}

		switch a.wizard.Step() {
		case core.StepSelectServices:
			cmd := a.updateSelect(msg)
			return a, cmd
		case core.StepConfigureServices:
			cmd := a.updateConfigure(msg)
			return a, cmd
		case core.StepValidate, core.StepDeploy:
			cmd := a.updateReview(msg)
			return a, cmd
		}
	}

	if a.form.editing() {
		var cmd tea.Cmd
		a.form.input, cmd = a.form.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.renderHeader()
	statusLine := a.status.view(a.renderHelp())

	chromeH := lipgloss.Height(header) + lipgloss.Height(statusLine) + 2
	innerW := max(0, a.width-contentStyle.GetHorizontalBorderSize())
	innerH := max(0, a.height-chromeH-contentStyle.GetVerticalBorderSize())
	textW := max(0, a.width-contentStyle.GetHorizontalFrameSize())
	textH := max(0, a.height-chromeH-contentStyle.GetVerticalFrameSize())

	var body string
	switch a.wizard.Step() {
	case core.StepSelectServices:
		body = a.viewSelect()
	case core.StepConfigureServices:
		body = a.viewConfigure()
	case core.StepValidate, core.StepDeploy:
		body = a.viewReview(textH)
	}
	content := renderStepIndicator(a.wizard.Step()) + "\n\n" + body

	if a.confirm.active {
		content = a.confirm.view()
	}

	content = clampWidth(content, textW)
	content = clampHeight(content, textH)

	box := contentStyle.Width(innerW).Height(innerH).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, box, statusLine)
}

func (a App) renderHeader() string {
	cfg := a.wizard.Config()
	logo := logoStyle.Render("mcpdesk")
	name := headerNameStyle.Render(cfg.Name)
	state := headerHintStyle.Render(string(cfg.Status))

	hints := tierBadgeStyle.Render("tier: " + a.wizard.Tier().String())

	left := lipgloss.JoinHorizontal(lipgloss.Top, " ", logo, " ", name, state)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(hints) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + hints
}

func (a App) renderHelp() string {
	var km help.KeyMap
	switch a.wizard.Step() {
	case core.StepSelectServices:
		km = selectHelpKeyMap{}
	case core.StepConfigureServices:
		km = configureHelpKeyMap{active: string(a.wizard.ActiveService()), editing: a.form.editing()}
	case core.StepValidate:
		km = validateHelpKeyMap{valid: a.result.IsValid}
	case core.StepDeploy:
		km = deployHelpKeyMap{}
	}
	return " " + helpStyle.Render(a.help.View(km))
}

// --- Navigation ---

func (a *App) next() tea.Cmd {
	err := a.wizard.Next()
	var unconfigured *core.UnconfiguredError
	switch {
	case errors.Is(err, core.ErrNoServicesEnabled):
		return a.warn("Enable at least one service to continue.")
	case errors.As(err, &unconfigured):
		return a.warn(fmt.Sprintf("Save these services first: %s.", joinIDs(unconfigured.Services)))
	case err != nil:
		return a.warn(err.Error())
	}

	a.form = a.form.reset()
	cmds := []tea.Cmd{a.persist()}
	if a.wizard.Step() == core.StepValidate {
		cmds = append(cmds, a.refreshValidation())
	}
	return tea.Batch(cmds...)
}

func (a *App) back() tea.Cmd {
	if err := a.wizard.Back(); err != nil {
		return nil
	}
	a.form = a.form.reset()
	return a.persist()
}

// cycleTier moves to the next subscription tier and re-derives the wizard.
func (a *App) cycleTier() tea.Cmd {
	all := tier.All()
	next := all[0]
	for i, t := range all {
		if t == a.wizard.Tier() {
			next = all[(i+1)%len(all)]
		}
	}

	change := a.wizard.SetTier(next)
	text := "Tier changed to " + next.String()
	kind := statusSuccess
	if !change.Empty() {
		kind = statusWarning
		var parts []string
		if len(change.Disabled) > 0 {
			parts = append(parts, "disabled "+joinIDs(change.Disabled))
		}
		if len(change.DroppedModels) > 0 {
			parts = append(parts, "dropped "+strings.Join(change.DroppedModels, ", "))
		}
		text += ": " + strings.Join(parts, "; ")
	}
	a.form = a.form.clamp(len(formRows(a.wizard)))

	var cmd tea.Cmd
	a.status, cmd = a.status.show(text, kind)
	cmds := []tea.Cmd{cmd, a.persist(), a.saveTierCmd(next)}
	if a.reviewing() {
		cmds = append(cmds, a.refreshValidation())
	}
	return tea.Batch(cmds...)
}

// reviewing reports whether the export preview is on screen.
func (a App) reviewing() bool {
	st := a.wizard.Step()
	return st == core.StepValidate || st == core.StepDeploy
}

// --- Background commands ---

// persist saves a snapshot of the wizard as the current draft.
func (a *App) persist() tea.Cmd {
	if a.opts.Drafts == nil {
		return nil
	}
	ds := a.opts.Drafts
	draft := &core.Draft{Configuration: a.wizard.Config().Clone(), State: a.wizard.State()}
	return func() tea.Msg {
		if err := ds.Save(draft); err != nil {
			return errMsg{err: fmt.Errorf("saving draft: %w", err)}
		}
		return nil
	}
}

func (a *App) saveTierCmd(t tier.Tier) tea.Cmd {
	if a.opts.Identity == nil {
		return nil
	}
	id := a.opts.Identity
	return func() tea.Msg {
		if err := id.UpdateSubscriptionTier(context.Background(), t); err != nil {
			return errMsg{err: fmt.Errorf("saving tier: %w", err)}
		}
		return nil
	}
}

func (a *App) saveTokenCmd(token string) tea.Cmd {
	if a.opts.EnvPath == "" {
		return nil
	}
	path := a.opts.EnvPath
	return func() tea.Msg {
		if err := core.SaveTokenEnv(path, token); err != nil {
			return errMsg{err: fmt.Errorf("saving token: %w", err)}
		}
		return nil
	}
}

// deployCmd deploys a copy of the configuration so the running command never
// shares state with Update.
func (a *App) deployCmd() tea.Cmd {
	cfg := a.wizard.Config().Clone()
	d := a.opts.Deployer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deployTimeout)
		defer cancel()
		doc, err := d.Deploy(ctx, cfg)
		return deployDoneMsg{cfg: cfg, doc: doc, err: err}
	}
}

func (a App) handleDeployDone(msg deployDoneMsg) (App, tea.Cmd) {
	a.deploying = false
	a.status = a.status.stopTask()

	var invalid *core.ValidationFailedError
	if errors.As(msg.err, &invalid) {
		a.result = invalid.Result
		var cmd tea.Cmd
		a.status, cmd = a.status.show(invalid.Error(), statusError)
		return a, cmd
	}

	state := a.wizard.State()
	if msg.err == nil {
		state.Step = core.StepDeploy
	}
	a.wizard = core.RestoreWizard(msg.cfg, a.wizard.Tier(), state)

	var cmd tea.Cmd
	if msg.err != nil {
		a.logger.Error().Err(msg.err).Msg("deploy failed")
		a.status, cmd = a.status.show(fmt.Sprintf("Deploy failed: %v. Press enter to retry.", msg.err), statusError)
	} else {
		a.doc = msg.doc
		a.status, cmd = a.status.show(fmt.Sprintf("Deployed %s (%d servers)", msg.cfg.Name, len(msg.doc.MCPServers)), statusSuccess)
	}
	cmds := tea.Batch(cmd, a.persist(), a.refreshValidation())
	return a, cmds
}

func (a *App) copyCmd() tea.Cmd {
	cb := a.opts.Clipboard
	doc := a.doc
	return func() tea.Msg {
		if err := core.CopyExport(cb, doc); err != nil {
			return errMsg{err: err}
		}
		return statusMsg{text: "Copied configuration JSON to clipboard", kind: statusSuccess}
	}
}

func (a *App) installCmd() tea.Cmd {
	path := a.opts.DesktopConfigPath
	doc := a.doc
	return func() tea.Msg {
		res, err := core.InstallDesktopConfig(path, doc, core.DesktopInstallOptions{Force: true})
		if err != nil {
			return errMsg{err: fmt.Errorf("installing into Claude Desktop: %w", err)}
		}
		return statusMsg{
			text: fmt.Sprintf("Wrote %d servers to %s. Restart Claude Desktop to load them.",
				res.Count(core.DesktopActionWrote), shortenPath(path)),
			kind: statusSuccess,
		}
	}
}

// --- Export preview ---

// refreshValidation re-runs the validator and re-renders the export preview.
func (a *App) refreshValidation() tea.Cmd {
	cfg := a.wizard.Config()
	a.result = core.Validate(cfg)
	a.doc = core.GenerateExport(cfg)
	return a.renderPreviewCmd()
}

// renderPreviewCmd renders the export JSON through glamour in the background.
func (a *App) renderPreviewCmd() tea.Cmd {
	if !a.ready {
		return nil
	}
	data, err := core.MarshalExport(a.doc)
	if err != nil {
		return func() tea.Msg { return errMsg{err: err} }
	}

	a.previewSeq++
	a.previewLoading = true
	seq := a.previewSeq
	width, _ := a.innerContentSize()
	raw := string(data)
	markdown := "```json\n" + raw + "```\n"
	cached := a.glamourRenderer

	return func() tea.Msg {
		r := cached
		if r == nil {
			var err error
			r, err = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return previewRenderedMsg{seq: seq, content: raw}
			}
		}
		rendered, err := r.Render(markdown)
		if err != nil {
			rendered = raw
		}
		return previewRenderedMsg{seq: seq, content: strings.Trim(rendered, "\n"), renderer: r}
	}
}

// --- Layout helpers ---

func (a *App) propagateSize() {
	w, h := a.innerContentSize()
	a.preview.Width = w
	a.preview.Height = max(0, h)
	a.confirm = a.confirm.setSize(w, h)
	a.form.input.Width = max(10, w-20)
}

// innerContentSize is the text area inside contentStyle's border and padding.
func (a App) innerContentSize() (width, height int) {
	chromeH := lipgloss.Height(a.renderHeader()) + 1 + 2
	width = max(0, a.width-contentStyle.GetHorizontalFrameSize())
	height = max(0, a.height-chromeH-contentStyle.GetVerticalFrameSize())
	return width, height
}

func (a *App) warn(text string) tea.Cmd {
	var cmd tea.Cmd
	a.status, cmd = a.status.show(text, statusWarning)
	return cmd
}

func (a *App) fail(err error) tea.Cmd {
	var cmd tea.Cmd
	a.status, cmd = a.status.show(err.Error(), statusError)
	return cmd
}

func joinIDs(ids []service.ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// clampHeight truncates content to at most maxLines lines.
func clampHeight(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= maxLines {
		return content
	}
	return strings.Join(lines[:maxLines], "\n")
}

// clampWidth truncates each line to maxWidth visible cells (ANSI aware) so
// lipgloss never wraps inside the fixed-size content box.
func clampWidth(content string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > maxWidth {
			lines[i] = ansi.Truncate(line, maxWidth, "…")
		}
	}
	return strings.Join(lines, "\n")
}
