package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lent/lang"
	"github.com/ardnew/lent/log"
	"github.com/ardnew/lent/plurals"
)

// Outcomes of the external editor flow, delivered back to Update.
type (
	// sourceEditedMsg carries the recompiled session after a successful
	// edit.
	sourceEditedMsg struct {
		src string
		res *lang.Resource
	}

	// editClearedMsg reports that the user emptied the buffer to abandon
	// the edit.
	editClearedMsg struct{}

	// editQuitMsg reports that the user declined to fix a failing edit.
	editQuitMsg struct{}

	// editFailedMsg reports an editor failure unrelated to compilation.
	editFailedMsg struct{ err error }
)

const (
	exprPrompt = "» "
	cmdPrompt  = " :"
)

// replEntry names the throwaway entity that wraps each input line.
const replEntry = "_repl"

// inputMode selects which of the two input lines is active: expressions
// resolve against the loaded sources, commands drive the session.
type inputMode int

const (
	modeExpr inputMode = iota
	modeCmd
)

// prompt returns the styled prompt string for the mode.
func (m inputMode) prompt() string {
	if m == modeCmd {
		return cmdPromptStyle.Render(cmdPrompt)
	}

	return promptStyle.Render(exprPrompt)
}

// fg is shorthand for a foreground-colored style.
func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var (
	promptStyle     = fg("6").Bold(true)
	cmdPromptStyle  = fg("5").Bold(true)
	inputStyle      = fg("15")
	resultStyle     = fg("2")
	errorStyle      = fg("1")
	hintStyle       = fg("8")
	suggestionStyle = fg("4")
	selectedStyle   = fg("0").Background(lipgloss.Color("4"))
)

// echoLine formats a submitted line for scrollback, prompt included.
func echoLine(mode inputMode, input string) string {
	return mode.prompt() + inputStyle.Render(input)
}

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help               Print this help
  list               List entries in the loaded sources
  bindings           Show variables, globals, and locale
  set name=value     Bind a variable referenced as $name
  global name=value  Bind a global referenced as @name
  locale tag         Switch the plural locale (en, pl, ar, ...)
  load source...     Compile additional sources into the session
  edit               Edit source in external $EDITOR
  clear              Clear screen
  quit               Exit REPL

Expressions resolve against the loaded sources:
  brandName                 entity value
  inbox[plural($unread)]    indexed variant
  user::gender              attribute
  pluralRule(5)             macro call

Keys:
  Tab / Shift-Tab  Cycle completion candidates
  Space            Accept the highlighted candidate
  Esc              Toggle between eval and command modes
  Up / Down        Walk history (mode follows the entry)
  Shift+Up / Down  Walk history of the current mode only
  Alt+Up / Down    Walk command history from either mode
  Ctrl+C / Ctrl+D  Exit (Ctrl+C clears a non-empty line first)
`
}

// Options configures the interactive session.
type Options struct {
	SearchPath []string       // directories searched by the load command
	CacheDir   string         // history file location
	Vars       lang.Vars      // initial variable bindings
	Globals    map[string]any // initial global bindings
	Locale     string         // initial plural locale
	Logger     log.Logger
}

// lineState captures an input line and its cursor so a mode switch or a
// history walk can restore it.
type lineState struct {
	text   string
	cursor int
}

// capture snapshots the current input line.
func capture(input textinput.Model) lineState {
	return lineState{text: input.Value(), cursor: input.Position()}
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	src        string         // concatenated source text of the session
	res        *lang.Resource // compiled form of src
	lookup     *lang.Context  // res chained with plural and core natives
	vars       lang.Vars
	globals    map[string]any
	locale     string
	searchPath []string
	logger     log.Logger
	history    *History
	historyIdx int

	matches    fuzzy.Matches // current fuzzy match results
	candidates []string      // backing candidate list
	wordStart  int           // byte offset of current word start
	wordEnd    int           // byte offset of current word end
	picked    int           // selected candidate index
	cycling  bool          // whether the user is tab-cycling
	preCycle     lineState     // input before tab-cycling began

	altNav struct {
		active bool      // walking command history via Alt+Up/Down
		mode   inputMode // mode to restore when the walk ends
		line   lineState // input to restore when the walk ends
	}

	mode  inputMode
	saved [2]lineState // per-mode input lines, indexed by inputMode

	width    int // terminal width for ellipsization
	quitting bool
}

// Run starts the REPL over the given source text.
func Run(ctx context.Context, source string, opts Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts.Logger.TraceContext(ctx, "starting session",
		slog.String("cache_dir", opts.CacheDir),
		slog.Int("source_bytes", len(source)))

	if strings.TrimSpace(source) == "" {
		return ErrNoSource
	}

	res, err := compileSource(ctx, source, opts.Logger)
	if err != nil {
		return err
	}

	opts.Logger.TraceContext(ctx, "session compiled",
		slog.Int("entry_count", res.Len()))

	history := NewHistory(filepath.Join(opts.CacheDir, baseHistory))
	if err := history.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load history: %v\n", err)
	}

	opts.Logger.TraceContext(ctx, "history loaded",
		slog.Int("entry_count", history.Len()))

	m := newModel(ctx, source, res, history, opts)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const (
	defaultWidth  = 80
	defaultLocale = "en"
)

func newModel(
	ctx context.Context,
	source string,
	res *lang.Resource,
	history *History,
	opts Options,
) model {
	ti := textinput.New()
	ti.Prompt = modeExpr.prompt()
	ti.CharLimit = 4096
	ti.Width = defaultWidth
	ti.Focus()

	if opts.Vars == nil {
		opts.Vars = lang.Vars{}
	}

	if opts.Globals == nil {
		opts.Globals = map[string]any{}
	}

	if opts.Locale == "" {
		opts.Locale = defaultLocale
	}

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		src:        source,
		res:        res,
		vars:       opts.Vars,
		globals:    opts.Globals,
		locale:     opts.Locale,
		searchPath: opts.SearchPath,
		logger:     opts.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeExpr,
	}
	m.rebuildLookup()

	return m
}

// rebuildLookup rechains the session context after a resource, global, or
// locale change.
func (m *model) rebuildLookup() {
	m.lookup = m.res.Context(
		m.globals,
		plurals.Builtin(m.locale),
		lang.CoreBuiltins(),
	)
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.onKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(exprPrompt) - 2

		return m, nil

	case sourceEditedMsg:
		m.src = msg.src
		m.res = msg.res
		m.rebuildLookup()
		m.logger.TraceContext(m.ctxFunc(), "editor applied",
			slog.Int("entry_count", m.res.Len()))

		return m, tea.Println(resultStyle.Render(
			fmt.Sprintf("source updated: %d entries", m.res.Len()),
		))

	case editClearedMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled; source unchanged"))

	case editQuitMsg:
		m.quitting = true

		return m, tea.Quit

	case editFailedMsg:
		return m, tea.Println(
			errorStyle.Render("edit failed: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.statusLine() + "\n"
}

// statusLine renders the line under the input: a history position, a
// signature hint, the candidate bar, or a usage hint, by precedence.
func (m model) statusLine() string {
	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).
			Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	input := m.input.Value()

	if strings.TrimSpace(input) == "" {
		if m.mode == modeCmd {
			return hintStyle.Render(
				"Type: help, list, bindings, set, global, locale, load, " +
					"edit, clear, quit (press Esc to return)",
			)
		}

		return hintStyle.Render("Type an expression or press Esc for commands")
	}

	if call := callAt(input, m.input.Position()); call.inArgs &&
		m.mode == modeExpr {
		if params, ok := signatureParams(m.res, call.name); ok {
			return signatureHint(call.name, params, call.arg)
		}
	}

	if len(m.matches) > 0 {
		return candidateBar(
			m.matches, m.picked, m.cycling, m.width, m.callable,
		)
	}

	return ""
}

func (m model) onKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "keypress",
		slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		// A non-empty line clears instead of exiting.
		m.input.SetValue("")
		m.cycling = false
		m.altNav.active = false
		m.historyIdx = m.history.Len()
		syncCompletions(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.cycling && len(m.matches) > 0 {
			// Lock in the current candidate without executing.
			m.cycling = false
			m.altNav.active = false
			syncCompletions(&m, true)

			return m, nil
		}

		m.altNav.active = false

		return m.submitLine()

	case tea.KeyTab:
		return m.cycleCandidates(1)

	case tea.KeyShiftTab:
		return m.cycleCandidates(-1)

	case tea.KeyUp:
		if msg.Alt {
			return m.navigateCmdHistory(-1)
		}

		return m.historyUp()

	case tea.KeyDown:
		if msg.Alt {
			return m.navigateCmdHistory(1)
		}

		return m.historyDown()

	case tea.KeyShiftUp:
		return m.historyUpInMode()

	case tea.KeyShiftDown:
		return m.historyDownInMode()

	case tea.KeyEsc:
		if m.cycling {
			// Abandon tab-cycling and restore the pre-tab line.
			m.cycling = false
			m.input.SetValue(m.preCycle.text)
			m.input.SetCursor(m.preCycle.cursor)
			syncCompletions(&m, false)

			return m, nil
		}

		m.altNav.active = false

		return m.toggleMode()

	case tea.KeyRunes:
		// Space accepts the current candidate and resumes typing.
		if m.cycling && msg.String() == " " {
			m.cycling = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		syncCompletions(&m, true)

		return m, cmd
	}

	// Editing keys fall through to the input model without auto-confirm.
	var cmd tea.Cmd

	m.cycling = false
	m.altNav.active = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	syncCompletions(&m, false)

	return m, cmd
}

// cycleCandidates steps through the completion candidates, entering
// tab-cycling on the first press. A single candidate completes immediately.
func (m model) cycleCandidates(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		spliceWord(&m, m.matches[0].Str)
		m.cycling = false
		m.picked = -1
		m.matches = nil

		return m, nil
	}

	if m.cycling {
		m.picked = (m.picked + step + len(m.matches)) % len(m.matches)
	} else {
		m.cycling = true
		m.preCycle = capture(m.input)

		m.picked = 0
		if step < 0 {
			m.picked = len(m.matches) - 1
		}
	}

	spliceWord(&m, m.matches[m.picked].Str)

	return m, nil
}

// spliceWord splices the replacement over the current word bounds
// and leaves the cursor after it.
func spliceWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// syncCompletions recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion once exactly one
// candidate remains and the typed word already equals that candidate.
// Deletions and cursor motion pass false so the user can edit freely.
func syncCompletions(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.scanWord()

	if !m.cycling {
		m.picked = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	word := m.input.Value()[m.wordStart:m.wordEnd]

	if word == candidate {
		spliceWord(m, candidate)
		m.cycling = false
		m.picked = -1
		m.matches = nil
	}
}

// callable reports whether a completion candidate names a macro or a native
// function, for the "()" suffix in the candidate bar.
func (m model) callable(name string) bool {
	if _, ok := m.res.Macro(name); ok {
		return true
	}

	_, ok := nativeSignatures[name]

	return ok
}

func (m model) submitLine() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	// Submission resets the saved line of both modes.
	m.saved = [2]lineState{}
	m.input.SetValue("")

	_, _ = m.history.Record(input, m.mode)
	m.historyIdx = m.history.Len()

	if m.mode == modeCmd {
		m.logger.TraceContext(m.ctxFunc(), "command submitted",
			slog.String("input", input))

		return m.runCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "expression submitted",
		slog.String("input", input))

	echoCmd := tea.Println(echoLine(modeExpr, input))

	result, err := m.resolveLine(input)
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "expression failed",
			slog.String("error", err.Error()))

		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	m.logger.TraceContext(m.ctxFunc(), "expression resolved",
		slog.Int("result_length", len(result)))

	return m, tea.Sequence(
		echoCmd,
		tea.Println(resultStyle.Render(result)),
	)
}

// resolveLine wraps the input line in a single-entity source, compiles it,
// and resolves the wrapper against the session context. Entity references,
// attribute access, indexed variants, and macro calls all reduce to the same
// placeable grammar, so one wrapper covers every input form.
func (m model) resolveLine(line string) (string, error) {
	res, err := compileSource(
		m.ctxFunc(),
		"<"+replEntry+" \"{ "+line+" }\">",
		m.logger,
	)
	if err != nil {
		return "", err
	}

	ent, ok := res.Entity(replEntry)
	if !ok {
		return "", lang.ErrEntryNotFound
	}

	return ent.Get(m.lookup, m.vars)
}

func (m model) runCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(echoLine(modeCmd, input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "running command",
		slog.String("command", cmd),
		slog.Any("args", args))

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list", "ids":
		return m, tea.Sequence(echoCmd, tea.Println(m.listEntries()))

	case "b", "bindings":
		return m, tea.Sequence(echoCmd, tea.Println(m.bindingsView()))

	case "set":
		return m.bindVar(echoCmd, strings.Join(args, " "))

	case "global":
		return m.bindGlobal(echoCmd, strings.Join(args, " "))

	case "locale":
		if len(args) != 1 {
			return m, tea.Sequence(echoCmd, tea.Println(
				errorStyle.Render("usage: locale tag"),
			))
		}

		return m.setLocale(echoCmd, args[0])

	case "load":
		if len(args) == 0 {
			return m, tea.Sequence(echoCmd, tea.Println(
				errorStyle.Render("usage: load source..."),
			))
		}

		return m.loadSources(echoCmd, args)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		var editCmd tea.Cmd

		m, editCmd = m.startEdit(m.ctxFunc())

		return m, tea.Sequence(echoCmd, editCmd)

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// bindVar binds a variable for resolution. The name may carry the leading
// '$' that expressions reference it with.
func (m model) bindVar(echoCmd tea.Cmd, arg string) (model, tea.Cmd) {
	name, value, err := parseBinding(arg)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("error: "+err.Error()),
		))
	}

	m.vars[name] = value

	return m, tea.Sequence(echoCmd, tea.Println(
		resultStyle.Render(fmt.Sprintf("$%s = %v", name, value)),
	))
}

// bindGlobal binds a global for resolution. The name may carry the leading
// '@' that expressions reference it with.
func (m model) bindGlobal(echoCmd tea.Cmd, arg string) (model, tea.Cmd) {
	name, value, err := parseBinding(arg)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("error: "+err.Error()),
		))
	}

	m.globals[name] = value
	m.rebuildLookup()

	return m, tea.Sequence(echoCmd, tea.Println(
		resultStyle.Render(fmt.Sprintf("@%s = %v", name, value)),
	))
}

// setLocale switches the plural locale for subsequent resolutions.
func (m model) setLocale(echoCmd tea.Cmd, tag string) (model, tea.Cmd) {
	m.locale = tag
	m.rebuildLookup()

	forms := strings.Join(plurals.Forms(tag), ", ")

	return m, tea.Sequence(echoCmd, tea.Println(
		resultStyle.Render(fmt.Sprintf("locale = %s (%s)", tag, forms)),
	))
}

// loadSources compiles additional sources into the session. The combined
// text recompiles as one resource, so a duplicate identifier in a loaded
// source overrides the earlier definition.
func (m model) loadSources(echoCmd tea.Cmd, names []string) (model, tea.Cmd) {
	ctx := m.ctxFunc()

	src := m.src

	for _, name := range names {
		path, err := m.findSource(name)
		if err != nil {
			return m, tea.Sequence(echoCmd, tea.Println(
				errorStyle.Render("error: "+err.Error()),
			))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return m, tea.Sequence(echoCmd, tea.Println(
				errorStyle.Render("error: "+err.Error()),
			))
		}

		src = src + "\n" + string(data)
	}

	res, err := compileSource(ctx, src, m.logger)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("error: "+err.Error()),
		))
	}

	m.src = src
	m.res = res
	m.rebuildLookup()

	m.logger.TraceContext(ctx, "sources loaded",
		slog.Any("sources", names),
		slog.Int("entry_count", res.Len()))

	return m, tea.Sequence(echoCmd, tea.Println(
		resultStyle.Render(fmt.Sprintf("%d entries loaded", res.Len())),
	))
}

// findSource locates a source name the same way the command line does:
// explicit paths pass through, bare names search the session path.
func (m model) findSource(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		return name, nil
	}

	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	for _, dir := range m.searchPath {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("source not found: %s", name)
}

// parseBinding splits name=value and evaluates the right side as an
// expr-lang expression. Anything that fails to evaluate binds as a literal
// string, so bare words need no quoting.
func parseBinding(arg string) (string, any, error) {
	name, src, found := strings.Cut(arg, "=")

	name = strings.TrimLeft(strings.TrimSpace(name), "$@")
	if !found || name == "" {
		return "", nil, fmt.Errorf("expected name=value, got %q", arg)
	}

	src = strings.TrimSpace(src)

	value, err := expr.Eval(src, nil)
	if err != nil {
		return name, src, nil
	}

	return name, value, nil
}

func (m model) startEdit(_ context.Context) (model, tea.Cmd) {
	cmd := &sourceEditor{
		src:     m.src,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditQuit) {
			return editQuitMsg{}
		}

		if err != nil {
			return editFailedMsg{err: err}
		}

		if cmd.newRes == nil {
			return editClearedMsg{}
		}

		return sourceEditedMsg{src: cmd.newSrc, res: cmd.newRes}
	})
}

// seekHistory walks the history in the given direction until it finds an
// entry recorded under the given mode, loading it into the input line.
// It reports whether the walk found one.
func (m model) seekHistory(mode inputMode, step int) (model, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.At(i)
		if err != nil || entry.Mode != mode {
			continue
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		syncCompletions(&m, false)

		return m, true
	}

	return m, false
}

// loadHistoryEntry places the entry at historyIdx into the input line,
// switching modes when the entry was recorded under the other mode.
func (m model) loadHistoryEntry() model {
	entry, err := m.history.At(m.historyIdx)
	if err != nil {
		return m
	}

	if m.mode != entry.Mode {
		m, _ = m.setMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	syncCompletions(&m, false)

	return m
}

func (m model) historyUp() (model, tea.Cmd) {
	if m.historyIdx == 0 {
		return m, nil
	}

	m.historyIdx--

	return m.loadHistoryEntry(), nil
}

func (m model) historyDown() (model, tea.Cmd) {
	if m.historyIdx >= m.history.Len()-1 {
		// Off the end: back to a fresh input line.
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		syncCompletions(&m, false)

		return m, nil
	}

	m.historyIdx++

	return m.loadHistoryEntry(), nil
}

func (m model) historyUpInMode() (model, tea.Cmd) {
	m, _ = m.seekHistory(m.mode, -1)

	return m, nil
}

func (m model) historyDownInMode() (model, tea.Cmd) {
	m, found := m.seekHistory(m.mode, 1)
	if !found && m.historyIdx < m.history.Len() {
		// Off the end: back to a fresh input line.
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		syncCompletions(&m, false)
	}

	return m, nil
}

// navigateCmdHistory drives Alt+Up/Down: it switches to command mode,
// walks the command history, and restores the pre-navigation state once the
// walk runs off either end.
func (m model) navigateCmdHistory(step int) (model, tea.Cmd) {
	if !m.altNav.active {
		m.altNav.active = true
		m.altNav.mode = m.mode
		m.altNav.line = capture(m.input)

		if m.mode != modeCmd {
			m, _ = m.setMode(modeCmd)
		}
	}

	var found bool
	if m, found = m.seekHistory(modeCmd, step); found {
		return m, nil
	}

	// The walk ran off the end: put everything back.
	m.altNav.active = false
	if m.altNav.mode != m.mode {
		m, _ = m.setMode(m.altNav.mode)
	}

	m.input.SetValue(m.altNav.line.text)
	m.input.SetCursor(m.altNav.line.cursor)
	m.historyIdx = m.history.Len()
	syncCompletions(&m, false)

	return m, nil
}

func (m model) listEntries() string {
	var b strings.Builder

	for id, v := range m.res.Entries() {
		preview := entryPreview(v)
		b.WriteString(fmt.Sprintf("  %s %s\n", id, hintStyle.Render(preview)))
	}

	return b.String()
}

func (m model) bindingsView() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("  locale %s\n", hintStyle.Render(m.locale)))

	for _, name := range slices.Sorted(maps.Keys(m.vars)) {
		b.WriteString(fmt.Sprintf("  $%s %s\n",
			name, hintStyle.Render(fmt.Sprintf("%v", m.vars[name]))))
	}

	for _, name := range slices.Sorted(maps.Keys(m.globals)) {
		b.WriteString(fmt.Sprintf("  @%s %s\n",
			name, hintStyle.Render(fmt.Sprintf("%v", m.globals[name]))))
	}

	return b.String()
}

// toggleMode flips between eval and command modes.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeExpr {
		return m.setMode(modeCmd)
	}

	return m.setMode(modeExpr)
}

// setMode activates the given mode, stashing the current input line
// and restoring the target mode's.
func (m model) setMode(mode inputMode) (model, tea.Cmd) {
	m.saved[m.mode] = capture(m.input)

	m.mode = mode
	m.input.Prompt = mode.prompt()
	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)

	syncCompletions(&m, false)

	return m, nil
}
