package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/hourly/internal/auth"
	"github.com/christopherklint97/hourly/internal/store"
	"github.com/christopherklint97/hourly/internal/timesheet"
)

type viewState int

const (
	inputView viewState = iota
	loadingView
	draftView
	clarifyView
	editView
	confirmationView
)

// Interpreter is the timesheet service as seen by the terminal.
type Interpreter interface {
	Interpret(ctx context.Context, req timesheet.Request, user *auth.User) (*timesheet.Result, error)
}

// Saver persists an accepted draft.
type Saver interface {
	InsertEntry(ctx context.Context, e *store.Entry) error
}

type Result struct {
	Skipped bool
	Entry   *store.Entry
}

type interpretMsg struct {
	result *timesheet.Result
	err    error
}

type savedMsg struct {
	entry *store.Entry
	err   error
}

type Options struct {
	User     *auth.User
	Projects []store.Project
	// ProjectID preselects a project for every interpretation.
	ProjectID string
	// Prefill seeds the input, e.g. with today's calendar events.
	Prefill string
	Today   time.Time
	Timeout time.Duration
}

type App struct {
	state   viewState
	input   inputModel
	spinner spinner.Model
	draft   draftModel
	clarify clarifyModel
	edit    editModel
	result  *Result
	errMsg  string
	notice  string

	interp    Interpreter
	saver     Saver
	user      *auth.User
	projects  []store.Project
	projectID string
	timeout   time.Duration
	lastInput string
}

func NewApp(interp Interpreter, saver Saver, opts Options) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	if opts.Today.IsZero() {
		opts.Today = time.Now()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return &App{
		state:     inputView,
		input:     newInputModel(headerInfo(opts.Today, opts.ProjectID, opts.Projects), opts.Prefill),
		spinner:   s,
		interp:    interp,
		saver:     saver,
		user:      opts.User,
		projects:  opts.Projects,
		projectID: opts.ProjectID,
		timeout:   opts.Timeout,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.textarea.Focus(), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsMsg, ok := msg.(tea.WindowSizeMsg); ok {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(wsMsg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.result = &Result{Skipped: true}
			return a, tea.Quit
		}
	case interpretMsg:
		return a.handleInterpret(msg)
	case savedMsg:
		return a.handleSaved(msg)
	}

	switch a.state {
	case inputView:
		return a.updateInput(msg)
	case loadingView:
		return a.updateLoading(msg)
	case draftView:
		return a.updateDraft(msg)
	case clarifyView:
		return a.updateClarify(msg)
	case editView:
		return a.updateEdit(msg)
	case confirmationView:
		return a.updateConfirmation(msg)
	}

	return a, nil
}

func (a *App) View() string {
	switch a.state {
	case inputView:
		return a.input.View()
	case loadingView:
		return a.spinner.View() + " Thinking..."
	case draftView:
		return a.draft.View(a.notice)
	case clarifyView:
		return a.clarify.View()
	case editView:
		return a.edit.View()
	case confirmationView:
		if a.errMsg != "" {
			return errorStyle.Render("Error: ") + a.errMsg + "\n\n" + helpStyle.Render("[r]etry • any other key to exit")
		}
		return successStyle.Render("Entry saved!") + "\n\n" + helpStyle.Render("Press any key to exit")
	}
	return ""
}

func (a *App) GetResult() *Result {
	return a.result
}

func (a *App) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "enter" && a.input.Value() != "" {
			a.lastInput = a.input.Value()
			a.state = loadingView
			return a, tea.Batch(a.spinner.Tick, a.interpret(a.lastInput, a.projectID))
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

func (a *App) updateDraft(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "a":
			if a.draft.draft.Hours == nil {
				a.notice = "Set the hours before saving."
				a.state = editView
				a.edit = newEditModel(a.draft.draft, a.projects)
				a.edit.field = editHours
				return a, nil
			}
			a.notice = ""
			return a, a.save(a.draft.draft)
		case "e":
			a.state = editView
			a.edit = newEditModel(a.draft.draft, a.projects)
			return a, nil
		case "r":
			return a, a.restart()
		case "s":
			a.result = &Result{Skipped: true}
			return a, tea.Quit
		}
	}
	return a, nil
}

func (a *App) updateClarify(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "k":
			a.clarify.moveUp()
		case "down", "j":
			a.clarify.moveDown()
		case "enter":
			opt, ok := a.clarify.selected()
			if !ok {
				return a, nil
			}
			a.state = loadingView
			return a, tea.Batch(a.spinner.Tick, a.interpret(a.lastInput, opt.ProjectID))
		case "r":
			return a, a.restart()
		case "s":
			a.result = &Result{Skipped: true}
			return a, tea.Quit
		}
	}
	return a, nil
}

func (a *App) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "esc" && !a.edit.editing {
			a.draft = newDraftModel(a.edit.draft)
			if a.draft.draft.Hours != nil {
				a.notice = ""
			}
			a.state = draftView
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.edit, cmd = a.edit.Update(msg)
	return a, cmd
}

func (a *App) updateConfirmation(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if a.errMsg != "" && keyMsg.String() == "r" {
			return a, a.restart()
		}
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) restart() tea.Cmd {
	a.state = inputView
	a.errMsg = ""
	a.notice = ""
	newInput := newInputModel(a.input.header, a.lastInput)
	newInput, _ = newInput.Update(tea.WindowSizeMsg{Width: a.input.width, Height: a.input.height})
	a.input = newInput
	return a.input.textarea.Focus()
}

func (a *App) handleInterpret(msg interpretMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.state = confirmationView
		a.errMsg = timesheet.AsError(msg.err).Message
		return a, nil
	}

	if msg.result.NeedsClarification() {
		a.clarify = newClarifyModel(msg.result.Clarification)
		a.state = clarifyView
		return a, nil
	}

	a.draft = newDraftModel(*msg.result.Draft)
	a.state = draftView
	return a, nil
}

func (a *App) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.state = confirmationView
		a.errMsg = msg.err.Error()
		return a, nil
	}

	a.result = &Result{Entry: msg.entry}
	a.errMsg = ""
	a.state = confirmationView
	return a, nil
}

func (a *App) interpret(input, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		res, err := a.interp.Interpret(ctx, timesheet.Request{Input: input, ProjectID: projectID}, a.user)
		return interpretMsg{result: res, err: err}
	}
}

func (a *App) save(d timesheet.Draft) tea.Cmd {
	return func() tea.Msg {
		entry := entryFromDraft(d, a.user)
		if a.saver == nil {
			return savedMsg{entry: entry}
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.saver.InsertEntry(ctx, entry); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{entry: entry}
	}
}

func entryFromDraft(d timesheet.Draft, user *auth.User) *store.Entry {
	e := &store.Entry{
		Date:        d.Date,
		Billable:    d.Billable,
		Description: d.Description,
	}
	if user != nil {
		e.UserID = user.ID
	}
	if d.ProjectID != nil {
		e.ProjectID = *d.ProjectID
	}
	if d.Hours != nil {
		e.Hours = *d.Hours
	}
	if d.TaskType != nil {
		e.TaskType = *d.TaskType
	}
	return e
}
