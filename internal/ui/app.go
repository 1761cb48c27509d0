package ui

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/karaflog/internal/config"
	"github.com/five82/karaflog/internal/filter"
	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/prefs"
	"github.com/five82/karaflog/internal/state"
	"github.com/five82/karaflog/internal/view"
)

// Sessions opens and closes watched files on behalf of the UI.
type Sessions interface {
	Open(path string) (logparse.SourceID, error)
	Close(id logparse.SourceID) error
	Reload(id logparse.SourceID) (logparse.SourceID, error)
	Clear(id logparse.SourceID) int
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Sessions  Sessions
	Config    config.Config
	Spec      filter.Spec
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	store     *state.Store
	sessions  Sessions
	cfg       config.Config
	prefs     prefs.Prefs
	prefsPath string
	log       zerolog.Logger
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	view    *view.Controller
	sources []state.SourceStatus
	active  logparse.SourceID
	changes <-chan struct{}
	unsub   func()

	// Log pane
	logViewport viewport.Model
	logState    logState

	// Help overlay
	showHelp bool

	// Filters modal
	showFilters    bool
	filterInputs   [2]textinput.Model // pattern, text
	filterFocusIdx int
	filterRegex    bool
	filterErr      error

	// File picker
	showPicker bool
	picker     filepicker.Model

	// Transient status bar message
	notice    string
	noticeErr bool
	noticeSeq int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	changes, unsub := store.Subscribe()

	m := Model{
		store:     store,
		sessions:  opts.Sessions,
		cfg:       opts.Config,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		log:       opts.Logger.With().Str("component", "ui").Logger(),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		view:      view.New(store, opts.Spec),
		changes:   changes,
		unsub:     unsub,
	}
	m.logState = newLogState(opts.Config)
	m.initFilterInputs()
	m.syncSources()
	m.view.Refresh()
	if len(m.sources) == 0 {
		m.openPicker()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForChange(m.changes),
		tickCmd(),
	}
	if m.showPicker {
		cmds = append(cmds, m.picker.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.showHelp || m.showFilters || m.showPicker {
			return m, nil
		}
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		if !m.logViewport.AtBottom() {
			m.logState.follow = false
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.logState.contentVersion++
		m.updateLogViewport()
		m.resizePicker()
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case tickMsg:
		// Keeps relative times and retry countdowns current.
		return m, tickCmd()

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
			m.noticeErr = false
		}
		return m, nil
	}

	// Directory listings and other picker internals.
	if m.showPicker {
		return m.updatePicker(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showFilters {
		return m.renderFilters()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if m.showPicker {
		b.WriteString(m.renderPicker())
	} else {
		b.WriteString(m.renderLogs())
	}
	return b.String()
}

// handleKey processes keyboard input. Overlays and inputs get the key first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.showFilters {
		return m.handleFiltersKey(msg)
	}

	if m.showPicker {
		return m.handlePickerKey(msg)
	}

	if m.logState.searchActive {
		return m, m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.logState.contentVersion++
		m.updateLogViewport()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextSource):
		m.switchSource(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevSource):
		m.switchSource(-1)
		return m, nil

	case key.Matches(msg, m.keys.OpenFile):
		return m, m.openPickerCmd()

	case key.Matches(msg, m.keys.CloseSource):
		return m, m.closeActive()

	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadActive()

	case key.Matches(msg, m.keys.Clear):
		return m, m.clearActive()
	}

	return m, m.handleLogsKey(msg)
}

// refresh pulls the latest source list and, unless paused, the visible
// records.
func (m *Model) refresh() {
	m.syncSources()
	if m.logState.paused {
		return
	}
	if m.view.Refresh() {
		m.logState.contentVersion++
	}
	m.updateLogViewport()
}

// syncSources reloads the source list and keeps the active source valid.
func (m *Model) syncSources() {
	m.sources = m.store.Sources()
	idx := slices.IndexFunc(m.sources, func(s state.SourceStatus) bool { return s.ID == m.active })
	if idx < 0 {
		m.active = ""
		if len(m.sources) > 0 {
			m.active = m.sources[0].ID
		}
	}
	m.view.SetSource(m.active)
}

// activeSource returns the status of the source on screen.
func (m Model) activeSource() (state.SourceStatus, bool) {
	for _, src := range m.sources {
		if src.ID == m.active {
			return src, true
		}
	}
	return state.SourceStatus{}, false
}

// switchSource moves to the next (delta 1) or previous (delta -1) tab.
func (m *Model) switchSource(delta int) {
	if len(m.sources) < 2 {
		return
	}
	idx := slices.IndexFunc(m.sources, func(s state.SourceStatus) bool { return s.ID == m.active })
	idx = (idx + delta + len(m.sources)) % len(m.sources)
	m.setActive(m.sources[idx].ID)
}

// setActive shows id and resets the per-source pane state.
func (m *Model) setActive(id logparse.SourceID) {
	m.active = id
	m.view.SetSource(id)
	m.logState.follow = true
	m.view.Refresh()
	m.logState.contentVersion++
	m.updateLogViewport()
}

func (m *Model) closeActive() tea.Cmd {
	if m.sessions == nil || m.active == "" {
		return nil
	}
	src, _ := m.activeSource()
	if err := m.sessions.Close(m.active); err != nil {
		return m.showError(err)
	}
	m.active = ""
	m.refresh()
	return m.showNotice("Closed " + displayName(src.Path))
}

func (m *Model) reloadActive() tea.Cmd {
	if m.sessions == nil || m.active == "" {
		return nil
	}
	next, err := m.sessions.Reload(m.active)
	if err != nil {
		return m.showError(err)
	}
	m.syncSources()
	m.setActive(next)
	return m.showNotice("Reloading from the start")
}

func (m *Model) clearActive() tea.Cmd {
	if m.sessions == nil || m.active == "" {
		return nil
	}
	n := m.sessions.Clear(m.active)
	m.refresh()
	return m.showNotice(plural(n, "record") + " cleared")
}

// openSource starts watching path and shows it.
func (m *Model) openSource(path string) tea.Cmd {
	if m.sessions == nil {
		return nil
	}
	id, err := m.sessions.Open(path)
	if err != nil {
		return m.showError(err)
	}
	m.prefs.AddRecent(path)
	m.savePrefs()
	m.syncSources()
	m.setActive(id)
	return m.showNotice("Watching " + displayName(path))
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("save prefs")
	}
}

// showNotice displays msg in the status bar for a few seconds.
func (m *Model) showNotice(msg string) tea.Cmd {
	m.notice = msg
	m.noticeErr = false
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func (m *Model) showError(err error) tea.Cmd {
	m.log.Warn().Err(err).Msg("ui action failed")
	cmd := m.showNotice(err.Error())
	m.noticeErr = true
	return cmd
}

// Messages

type tickMsg time.Time

type storeChangedMsg struct{}

type clearNoticeMsg struct{ seq int }

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks until the store reports a change. A closed channel
// ends the subscription.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context ends.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := New(opts)
	defer m.unsub()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// startDir is where the file picker opens.
func (m Model) startDir() string {
	if dir := m.prefs.LastDir(); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
