package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/log"
)

// Errors returned by the history and the variable editor.
var (
	ErrOutOfBounds  = errors.New("history index out of range")
	ErrEditDeclined = errors.New("edit declined")
	ErrNotMapping   = errors.New("variables must be a mapping")
)

// editVarsMsg is sent when the variables were edited and decoded.
type editVarsMsg struct{ vars *lang.Object }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to edit again after a
// decode error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor itself failed.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this message
  vars     List session variables
  filters  List filters
  tests    List tests
  edit     Edit session variables as YAML in $EDITOR
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type an expression to print its value, or any template source to render it
  {% set %} and {% macro %} definitions persist between lines
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down for history (switches mode to match the entry)
  Use Shift+Up/Shift+Down for history of the current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit`

// inputMode is the kind of line being entered.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *Session
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	candidates   []string
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
	mode         inputMode
	saved        [2]struct {
		text   string
		cursor int
	}
}

// Run starts an interactive session. History is kept in historyDir; an empty
// historyDir disables persistence.
func Run(ctx context.Context, s *Session, historyDir string) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	path := ""
	if historyDir != "" {
		path = filepath.Join(historyDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		s.logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	s.logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("history_entries", history.Len()),
		slog.Int("vars", len(s.env.Local())),
	)

	_, err = tea.NewProgram(newModel(ctx, s, history), tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, s *Session, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    s,
		logger:     s.logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editVarsMsg:
		m.session.SetVars(msg.vars)
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("vars", msg.vars.Len()),
		)

		return m, tea.Println(resultStyle.Render("✔ variables updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine returns the line shown below the input: the history position,
// a usage hint, a signature or the completion bar.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if m.mode == modeEval && len(m.matches) == 0 {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if sig, ok := m.session.Signature(call.category, call.name); ok {
				return renderSignatureHint(sig, call.argIndex)
			}
		}
	}

	callable := func(string) bool { return false }
	if m.mode == modeEval {
		callable = m.session.Callable
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, callable)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.switchToMode(1 - m.mode), nil

	case tea.KeyRunes:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end. A single
// candidate is completed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord substitutes replacement for the word under the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(replacement))
	m.wordEnd = m.wordStart + len(replacement)
}

// refreshMatches recomputes the completions. With autoConfirm, a sole
// candidate equal to the typed word is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]struct {
		text   string
		cursor int
	}{}
	m.input.SetValue("")

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	out, err := m.session.Eval(m.ctxFunc(), input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	if out == "" {
		return m, echo
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))
	cmd, _, _ := strings.Cut(input, " ")

	m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("command", cmd))

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(m.listVars()))

	case "f", "filters":
		return m, tea.Sequence(echo, tea.Println(m.listSignatures(lang.CategoryFilter)))

	case "t", "tests":
		return m, tea.Sequence(echo, tea.Println(m.listSignatures(lang.CategoryTest)))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())
	}

	return m, tea.Println(errorStyle.Render("Unknown command: " + cmd + " (try 'help')"))
}

func (m model) edit() tea.Cmd {
	cmd := &editVarsCommand{
		vars:    m.session.Vars(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.result == nil:
			return editCancelledMsg{}
		}

		return editVarsMsg{vars: cmd.result}
	})
}

const previewWidth = 48

func (m model) listVars() string {
	var b strings.Builder

	for k, v := range m.session.env.All() {
		preview := lang.Repr(v)
		if len(preview) > previewWidth {
			preview = preview[:previewWidth-3] + "..."
		}

		fmt.Fprintf(&b, "  %s %s\n", k, hintStyle.Render(preview))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no variables)")
	}

	return b.String()
}

func (m model) listSignatures(c lang.Category) string {
	reg := m.session.Registry()

	names := reg.Tests()
	if c == lang.CategoryFilter {
		names = reg.Filters()
	}

	var b strings.Builder

	for _, name := range names {
		sig, _ := reg.Signature(c, name)
		fmt.Fprintf(&b, "  %s %s\n", sig, hintStyle.Render(sig.Doc))
	}

	return b.String()
}

// historyStep moves through history by dir (-1 older, +1 newer). With
// sameMode only entries of the current mode are visited; otherwise the mode
// follows the entry. Moving past the newest entry clears the input.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		e, err := m.history.Entry(i)
		if err != nil || (sameMode && e.Mode != m.mode) {
			continue
		}

		if e.Mode != m.mode {
			m = m.switchToMode(e.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(e.Line)
		m.input.SetCursor(len(e.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode changes mode, saving the input of the current mode and
// restoring that of the new one.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode].text = m.input.Value()
	m.saved[m.mode].cursor = m.input.Position()

	m.mode = mode

	prompt := promptStyle.Render(evalPrompt)
	if mode == modeCtrl {
		prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.Prompt = prompt
	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	refreshMatches(&m, false)

	return m
}
