package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/fns/lang"
	"github.com/ardnew/fns/log"
)

// Config configures an interactive session.
type Config struct {
	// Options configure parsing and the session's root environment.
	Options []lang.Option
	// History is the history file. Empty keeps history in memory.
	History string
	Logger  log.Logger

	// Input and Output replace the terminal when non-nil.
	Input  io.Reader
	Output io.Writer
}

// editDoneMsg is sent when the editor produced a program that parses.
type editDoneMsg struct {
	source string
	prog   *lang.Program
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List bindings visible in the session
  edit     Write a program in $EDITOR and evaluate it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type a statement to evaluate it; let and const bindings persist
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to browse command history from any mode
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
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
	matchStyle      = suggestionStyle.Bold(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// model is the Bubble Tea model for the REPL. The environment is shared by
// every copy of the model, so bindings survive across Update calls.
type model struct {
	ctxFunc          func() context.Context
	input            textinput.Model
	env              *lang.Environment
	options          []lang.Option
	logger           log.Logger
	history          *History
	historyIdx       int
	matches          fuzzy.Matches // current fuzzy match results
	candidates       []string      // backing candidate list
	wordStart        int           // byte offset of current word start
	wordEnd          int           // byte offset of current word end
	suggIdx          int           // selected candidate index
	tabActive        bool          // whether user is tab-cycling
	preTabText       string        // input text before tab-cycling began
	preTabCursor     int           // cursor position before tab-cycling began
	altNavActive     bool          // whether user is in Alt+Up/Down navigation
	altNavOrigMode   inputMode     // mode before Alt navigation
	altNavOrigText   string        // text before Alt navigation
	altNavOrigCursor int           // cursor position before Alt navigation
	width            int           // terminal width for ellipsization
	quitting         bool
	mode             inputMode
	evalText         string
	evalCursor       int
	ctrlText         string
	ctrlCursor       int
	editSource       string // last program accepted from the editor
}

// Run starts an interactive session in a new root environment built from
// cfg.Options. It returns when the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env, err := lang.NewRootEnvironment(cfg.Options...)
	if err != nil {
		return err
	}

	history := NewHistory(cfg.History)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "history not loaded",
			slog.String("file", cfg.History),
			slog.Any("error", err))
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.History),
		slog.Int("history_count", history.Len()),
		slog.Int("name_count", len(env.Names())))

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}

	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}

	_, err = tea.NewProgram(newModel(ctx, env, history, cfg), opts...).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	env *lang.Environment,
	history *History,
	cfg Config,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	// Each line is parsed once; caching them would only grow the cache.
	opts := append(cfg.Options[:len(cfg.Options):len(cfg.Options)],
		lang.WithLogger(cfg.Logger),
		lang.WithCache(false))

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		env:        env,
		options:    opts,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
		suggIdx:    -1,
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
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.editSource = msg.source

		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("statement_count", len(msg.prog.Statements)))

		return m, tea.Println(m.run(msg.source, msg.prog))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

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

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(m.input.Value()) == "":
		hint := "Type a statement or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: help, list, edit, clear, quit (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.refreshMatches(true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.seekCtrl(-1), nil
		}

		return m.seek(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.seekCtrl(+1), nil
		}

		return m.seek(+1, false), nil

	case tea.KeyShiftUp:
		return m.seek(-1, true), nil

	case tea.KeyShiftDown:
		return m.seek(+1, true), nil

	case tea.KeyEsc:
		m.altNavActive = false

		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches(false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil
	}

	// Typing confirms a tab selection with space and may auto-complete;
	// editing and cursor keys never do.
	typing := msg.Type == tea.KeyRunes
	if !typing || msg.String() == " " {
		m.tabActive = false
	}

	if !typing {
		m.altNavActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(typing)

	return m, cmd
}

// cycle moves the tab selection by step, entering tab-cycling on the first
// press. A single candidate is completed outright.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceCurrentWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceCurrentWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word with replacement and moves
// the cursor to its end.
func (m *model) replaceCurrentWord(replacement string) {
	input := m.input.Value()
	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.wordEnd = m.wordStart + len(replacement)
	m.input.SetCursor(m.wordEnd)
}

// refreshMatches recomputes completions. With autoConfirm, a word that
// already equals its only candidate is accepted and the bar is cleared.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
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

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	return m, tea.Sequence(echo, tea.Println(m.evaluate(input)))
}

// evaluate parses and evaluates input in the session environment and
// returns the styled line to print.
func (m model) evaluate(input string) string {
	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	prog, err := lang.ParseString(m.ctxFunc(), input, m.options...)
	if err != nil {
		return renderError(input, err)
	}

	return m.run(input, prog)
}

// run evaluates prog, parsed from source, in the session environment.
func (m model) run(source string, prog *lang.Program) string {
	v, err := m.env.Evaluate(m.ctxFunc(), prog, m.options...)
	if err != nil {
		return renderError(source, err)
	}

	return resultStyle.Render(lang.Inspect(v))
}

func renderError(source string, err error) string {
	return errorStyle.Render(strings.TrimRight(lang.Report(source, err), "\n"))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", fields[0]),
		slog.Any("args", fields[1:]))

	switch fields[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + fields[0] + " (try 'help')"))
	}
}

// edit suspends the session to run the editor on the last edited program.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		source:  m.editSource,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.prog == nil:
			return editCancelledMsg{}
		default:
			return editDoneMsg{source: cmd.source, prog: cmd.prog}
		}
	})
}

// listBindings renders every name visible in the session, one per line.
func (m model) listBindings() string {
	var b strings.Builder

	for _, name := range m.env.Names() {
		v, _ := m.env.Lookup(name)

		kind := "let"
		if constant, _ := m.env.IsConstant(name); constant {
			kind = "const"
		}

		fmt.Fprintf(&b, "  %s%s %s %s\n",
			hintStyle.Render(kind), strings.Repeat(" ", len("const")-len(kind)),
			name, hintStyle.Render(formatPreview(v)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// showEntry loads history entry i into the input, switching to its mode
// when switchMode is set.
func (m model) showEntry(i int, entry HistoryEntry, switchMode bool) model {
	if switchMode && m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refreshMatches(false)

	return m
}

// clearEntry leaves history navigation with an empty input.
func (m model) clearEntry() model {
	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	m.refreshMatches(false)

	return m
}

// find returns the nearest history entry from m.historyIdx in direction dir
// whose mode is mode, or any mode if mode is negative.
func (m model) find(dir int, mode inputMode) (int, HistoryEntry, bool) {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err == nil && (mode < 0 || entry.Mode == mode) {
			return i, entry, true
		}
	}

	return 0, HistoryEntry{}, false
}

// seek steps through history. Unless inMode is set, entries from either mode
// are shown and the mode follows them. Stepping past the newest entry clears
// the input; stepping past the oldest stays put.
func (m model) seek(dir int, inMode bool) model {
	mode := inputMode(-1)
	if inMode {
		mode = m.mode
	}

	if i, entry, ok := m.find(dir, mode); ok {
		return m.showEntry(i, entry, !inMode)
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		return m.clearEntry()
	}

	return m
}

// seekCtrl steps through command history from either mode. Running off
// either end restores the mode and input from before navigation began.
func (m model) seekCtrl(dir int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()
		m = m.switchToMode(modeCtrl)
	}

	if i, entry, ok := m.find(dir, modeCtrl); ok {
		return m.showEntry(i, entry, false)
	}

	m.altNavActive = false
	m = m.switchToMode(m.altNavOrigMode)
	m.input.SetValue(m.altNavOrigText)
	m.input.SetCursor(m.altNavOrigCursor)
	m.historyIdx = m.history.Len()
	m.refreshMatches(false)

	return m
}

// switchToMode changes the input mode, saving the current mode's input and
// restoring the target's.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == mode {
		return m
	}

	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.refreshMatches(false)

	return m
}
