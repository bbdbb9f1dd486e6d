// Package tui is the interactive terminal session. It renders the plan
// lifecycle and routes keys to the controller; all state lives in
// lifecycle.Controller and notes.Editor.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rcliao/learnpath/internal/lifecycle"
	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/notes"
	"github.com/rcliao/learnpath/internal/progress"
	"github.com/rcliao/learnpath/internal/search"
)

// dashTab is the active dashboard tab.
type dashTab int

const (
	tabPlan dashTab = iota
	tabChat
)

// Previewer summarizes a resource page.
type Previewer interface {
	Preview(ctx context.Context, url string) (search.Preview, error)
}

type opDoneMsg struct {
	op  string
	err error
}

type chatDoneMsg struct{ err error }

type previewMsg struct {
	stepID  string
	preview search.Preview
	err     error
}

type autosaveMsg time.Time

// AppOption customizes App construction.
type AppOption func(*App)

// WithPreviewer enables resource previews on the dashboard.
func WithPreviewer(p Previewer) AppOption {
	return func(a *App) { a.previewer = p }
}

// WithLogger sets the session logger.
func WithLogger(log *logger.Logger) AppOption {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// WithContext sets the context passed to controller and store calls.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the bubbletea model for a learnpath session.
type App struct {
	ctx       context.Context
	ctrl      *lifecycle.Controller
	editor    *notes.Editor
	previewer Previewer
	log       *logger.Logger

	lastState lifecycle.State
	busy      string
	errMsg    string
	width     int
	height    int

	// home
	plans      []model.PlanRecord
	homeCursor int

	// onboarding
	onboarding *lifecycle.Onboarding
	input      textinput.Model

	// pathways
	pathCursor int
	picked     map[string]bool

	// review
	reviewScroll int

	// dashboard
	tab       dashTab
	cursor    int
	previews  map[string]search.Preview
	chatInput textinput.Model
	chatBusy  bool

	// learning log
	logOpen    bool
	logFocus   logFocus
	logCursor  int
	logEntries []model.LogEntry
	noteTitle  textinput.Model
	noteBody   textarea.Model
}

// NewApp creates the session model.
func NewApp(ctrl *lifecycle.Controller, editor *notes.Editor, opts ...AppOption) *App {
	input := textinput.New()
	input.CharLimit = 500
	input.Width = 60

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask anything..."
	chatInput.CharLimit = 2000
	chatInput.Width = 60

	noteTitle := textinput.New()
	noteTitle.Placeholder = "Title"
	noteTitle.CharLimit = 200
	noteTitle.Width = 50

	noteBody := textarea.New()
	noteBody.Placeholder = "Write what you learned..."
	noteBody.SetWidth(60)
	noteBody.SetHeight(10)

	a := &App{
		ctx:       context.Background(),
		ctrl:      ctrl,
		editor:    editor,
		log:       logger.Nop(),
		lastState: lifecycle.StateUninitialized,
		input:     input,
		chatInput: chatInput,
		noteTitle: noteTitle,
		noteBody:  noteBody,
		picked:    map[string]bool{},
		previews:  map[string]search.Preview{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init starts the controller.
func (a *App) Init() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: "start", err: a.ctrl.Start(a.ctx)}
	}
}

// run executes a controller operation off the update loop.
func (a *App) run(label, op string, fn func(ctx context.Context) error) tea.Cmd {
	a.busy = label
	a.errMsg = ""
	ctx := a.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// Update handles a message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		w := max(20, msg.Width-8)
		a.input.Width = w
		a.chatInput.Width = w
		a.noteBody.SetWidth(max(20, msg.Width-36))
		a.noteBody.SetHeight(max(5, msg.Height-12))
		return a, nil

	case opDoneMsg:
		a.busy = ""
		if msg.err != nil {
			a.log.Debug("operation failed", "op", msg.op, "error", msg.err)
			if a.ctrl.Notice() == "" {
				a.errMsg = msg.err.Error()
			}
		}
		return a, a.syncState()

	case chatDoneMsg:
		a.chatBusy = false
		return a, nil

	case previewMsg:
		a.busy = ""
		if msg.err != nil {
			a.errMsg = "preview failed: " + msg.err.Error()
			return a, nil
		}
		a.previews[msg.stepID] = msg.preview
		return a, nil

	case autosaveMsg:
		if !a.logOpen {
			return a, nil
		}
		if a.editor.Save(a.ctx) {
			a.refreshLog()
		}
		return a, autosaveTick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.flushNotes()
			return a, tea.Quit
		}
		if a.ctrl.Notice() != "" {
			switch msg.String() {
			case "enter", "esc", " ":
				a.ctrl.ClearNotice()
			}
			return a, nil
		}
		if a.busy != "" {
			return a, nil
		}
		if a.logOpen {
			return a.updateLog(msg)
		}
		switch a.ctrl.State() {
		case lifecycle.StateHome:
			return a.updateHome(msg)
		case lifecycle.StateOnboarding:
			return a.updateOnboarding(msg)
		case lifecycle.StatePathways:
			return a.updatePathways(msg)
		case lifecycle.StateReview:
			return a.updateReview(msg)
		case lifecycle.StateRevising:
			return a.updateRevising(msg)
		case lifecycle.StateDashboard:
			return a.updateDashboard(msg)
		}
	}

	var cmd tea.Cmd
	if a.logOpen {
		return a, a.updateLogInputs(msg)
	}
	switch a.ctrl.State() {
	case lifecycle.StateOnboarding, lifecycle.StateRevising:
		a.input, cmd = a.input.Update(msg)
	case lifecycle.StateDashboard:
		if a.tab == tabChat {
			a.chatInput, cmd = a.chatInput.Update(msg)
		}
	}
	return a, cmd
}

// syncState runs entry actions when the controller state changed.
func (a *App) syncState() tea.Cmd {
	prev, cur := a.lastState, a.ctrl.State()
	if prev == cur {
		return nil
	}
	a.lastState = cur
	a.log.Debug("screen change", "from", prev, "to", cur)

	switch cur {
	case lifecycle.StateHome:
		a.plans = a.ctrl.Plans(a.ctx)
		a.homeCursor = clamp(a.homeCursor, len(a.plans))
	case lifecycle.StateOnboarding:
		a.onboarding = lifecycle.NewOnboarding()
		return a.focusOnboardingField()
	case lifecycle.StatePathways:
		if prev == lifecycle.StateOnboarding {
			a.picked = map[string]bool{}
			a.pathCursor = 0
		}
	case lifecycle.StateReview:
		a.reviewScroll = 0
	case lifecycle.StateRevising:
		if prev == lifecycle.StateReview {
			a.input.Reset()
		}
		a.input.Placeholder = "What would you like to change?"
		return a.input.Focus()
	case lifecycle.StateDashboard:
		a.tab = tabPlan
		a.previews = map[string]search.Preview{}
		plan := a.ctrl.Plan()
		a.cursor = 0
		if act, ok := progress.FirstIncomplete(plan); ok {
			a.cursor = act.Index
		}
	}
	return nil
}

func (a *App) focusOnboardingField() tea.Cmd {
	o := a.onboarding
	a.input.Reset()
	a.input.Placeholder = o.Placeholder()
	if !o.Done() {
		a.input.SetValue(fieldValue(o.Profile(), o.Field()))
	}
	return a.input.Focus()
}

func fieldValue(p model.UserProfile, f lifecycle.Field) string {
	switch f {
	case lifecycle.FieldTopic:
		return p.Topic
	case lifecycle.FieldTimeCommitment:
		return string(p.TimeCommitment)
	case lifecycle.FieldLevel:
		return string(p.Level)
	case lifecycle.FieldMotivation:
		return p.Motivation
	}
	return ""
}

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "up", "k":
		if a.homeCursor > 0 {
			a.homeCursor--
		}
	case "down", "j":
		if a.homeCursor < len(a.plans)-1 {
			a.homeCursor++
		}
	case "n":
		if err := a.ctrl.CreateNew(); err != nil {
			a.errMsg = err.Error()
		}
		return a, a.syncState()
	case "l":
		return a, a.openLog()
	case "enter":
		if len(a.plans) == 0 {
			return a, nil
		}
		if err := a.ctrl.SelectPlan(a.ctx, a.plans[a.homeCursor].ID); err != nil {
			a.errMsg = err.Error()
		}
		return a, a.syncState()
	}
	return a, nil
}

func (a *App) updateOnboarding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := a.onboarding
	switch msg.String() {
	case "esc":
		o.Back()
		a.errMsg = ""
		return a, a.focusOnboardingField()
	case "enter":
		if !o.Done() {
			if err := o.Answer(a.input.Value()); err != nil {
				a.errMsg = err.Error()
				return a, nil
			}
			a.errMsg = ""
			if !o.Done() {
				return a, a.focusOnboardingField()
			}
		}
		profile := o.Profile()
		return a, a.run("Finding learning pathways for "+profile.Topic+"...", "submit profile", func(ctx context.Context) error {
			return a.ctrl.SubmitProfile(ctx, profile)
		})
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updatePathways(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pathways := a.ctrl.Pathways()
	switch msg.String() {
	case "up", "k":
		if a.pathCursor > 0 {
			a.pathCursor--
		}
	case "down", "j":
		if a.pathCursor < len(pathways)-1 {
			a.pathCursor++
		}
	case " ", "x":
		if len(pathways) > 0 {
			id := pathways[a.pathCursor].ID
			a.picked[id] = !a.picked[id]
		}
	case "enter":
		var ids []string
		for _, p := range pathways {
			if a.picked[p.ID] {
				ids = append(ids, p.ID)
			}
		}
		if len(ids) == 0 {
			a.errMsg = lifecycle.ErrEmptySelection.Error()
			return a, nil
		}
		topic := a.ctrl.Profile().Topic
		return a, a.run("Designing your "+topic+" plan...", "select pathways", func(ctx context.Context) error {
			return a.ctrl.SelectPathways(ctx, ids)
		})
	}
	return a, nil
}

func (a *App) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.reviewScroll > 0 {
			a.reviewScroll--
		}
	case "down", "j":
		a.reviewScroll++
	case "enter", "c":
		if err := a.ctrl.Confirm(a.ctx); err != nil {
			a.errMsg = err.Error()
		}
		return a, a.syncState()
	case "r":
		if err := a.ctrl.RequestRevision(); err != nil {
			a.errMsg = err.Error()
			return a, nil
		}
		return a, a.syncState()
	}
	return a, nil
}

func (a *App) updateRevising(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		feedback := a.input.Value()
		if strings.TrimSpace(feedback) == "" {
			a.errMsg = lifecycle.ErrEmptyFeedback.Error()
			return a, nil
		}
		return a, a.run("Revising your plan...", "submit feedback", func(ctx context.Context) error {
			return a.ctrl.SubmitFeedback(ctx, feedback)
		})
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.tab == tabChat {
		return a.updateChat(msg)
	}
	plan := a.ctrl.Plan()
	acts := progress.Flatten(plan)
	switch msg.String() {
	case "tab":
		a.tab = tabChat
		return a, a.chatInput.Focus()
	case "L":
		return a, a.openLog()
	case "esc", "b":
		if err := a.ctrl.BackToHome(a.ctx); err != nil {
			a.errMsg = err.Error()
		}
		return a, a.syncState()
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(acts)-1 {
			a.cursor++
		}
	case "n":
		if next, ok := progress.FirstIncomplete(plan); ok {
			a.cursor = next.Index
		}
	case " ", "x", "enter":
		if a.cursor < len(acts) {
			act := acts[a.cursor]
			if err := a.ctrl.ToggleStep(a.ctx, act.DayID, act.Step.ID); err != nil {
				a.errMsg = err.Error()
			}
		}
	case "p":
		if a.previewer == nil || a.cursor >= len(acts) {
			return a, nil
		}
		step := acts[a.cursor].Step
		if !strings.HasPrefix(step.URL, "http") {
			a.errMsg = "no resource link for this step"
			return a, nil
		}
		a.busy = "Fetching preview..."
		ctx, p := a.ctx, a.previewer
		return a, func() tea.Msg {
			pv, err := p.Preview(ctx, step.URL)
			return previewMsg{stepID: step.ID, preview: pv, err: err}
		}
	}
	return a, nil
}

func (a *App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		a.tab = tabPlan
		a.chatInput.Blur()
		return a, nil
	case "enter":
		text := a.chatInput.Value()
		if strings.TrimSpace(text) == "" || a.chatBusy {
			return a, nil
		}
		a.chatInput.Reset()
		a.chatBusy = true
		ctx := a.ctx
		return a, func() tea.Msg {
			_, err := a.ctrl.Chat(ctx, text)
			return chatDoneMsg{err: err}
		}
	}
	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

func autosaveTick() tea.Cmd {
	return tea.Tick(notes.AutosaveInterval, func(t time.Time) tea.Msg {
		return autosaveMsg(t)
	})
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
