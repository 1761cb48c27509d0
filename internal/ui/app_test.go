package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/karaflog/internal/config"
	"github.com/five82/karaflog/internal/filter"
	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/state"
)

// fakeSessions applies user commands straight to the store.
type fakeSessions struct {
	store  *state.Store
	closed []logparse.SourceID
}

func (f *fakeSessions) Open(path string) (logparse.SourceID, error) {
	id := logparse.SourceID(filepath.Base(path))
	f.store.Register(id, path)
	return id, nil
}

func (f *fakeSessions) Close(id logparse.SourceID) error {
	f.closed = append(f.closed, id)
	f.store.Remove(id)
	return nil
}

func (f *fakeSessions) Reload(id logparse.SourceID) (logparse.SourceID, error) {
	f.store.Clear(id)
	return id, nil
}

func (f *fakeSessions) Clear(id logparse.SourceID) int {
	return f.store.Clear(id)
}

func rec(src logparse.SourceID, level logparse.Level, raw string) logparse.Record {
	return logparse.Record{Source: src, Level: level, Raw: raw, Message: raw}
}

func newTestModel(t *testing.T, records ...logparse.Record) (Model, *state.Store, *fakeSessions) {
	t.Helper()
	store := &state.Store{}
	store.Register("karaf", "/opt/karaf/data/log/karaf.log")
	store.Append(records...)

	sessions := &fakeSessions{store: store}
	m := New(Options{
		Store:     store,
		Sessions:  sessions,
		Config:    config.Default(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	t.Cleanup(m.unsub)

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, store, sessions
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func sampleRecords() []logparse.Record {
	return []logparse.Record{
		rec("karaf", logparse.LevelInfo, "bundle 42 started"),
		rec("karaf", logparse.LevelWarn, "disk almost full"),
		rec("karaf", logparse.LevelError, "disk full, write failed"),
		rec("karaf", logparse.LevelDebug, "heartbeat"),
	}
}

func TestModelCycleLevel(t *testing.T) {
	m, _, _ := newTestModel(t, sampleRecords()...)
	if got := m.view.Len(); got != 4 {
		t.Fatalf("visible = %d, want 4", got)
	}

	// off -> TRACE -> DEBUG -> INFO -> WARN
	m = press(t, m, "L", "L", "L", "L")
	if got := m.view.Spec().MinLevel; got != logparse.LevelWarn {
		t.Fatalf("MinLevel = %v, want WARN", got)
	}
	if got := m.view.Len(); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}

	// WARN -> ERROR -> off
	m = press(t, m, "L", "L")
	if got := m.view.Len(); got != 4 {
		t.Fatalf("visible after wrap = %d, want 4", got)
	}
}

func TestModelFilterModalKeepsPreviousFilterOnError(t *testing.T) {
	m, _, _ := newTestModel(t, sampleRecords()...)

	m = press(t, m, "F", "disk", "enter")
	if m.showFilters {
		t.Fatalf("filters modal still open after valid pattern")
	}
	if got := m.view.Len(); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}

	m = press(t, m, "F", "ctrl+c", "([", "enter")
	if !m.showFilters {
		t.Fatalf("filters modal closed on invalid pattern")
	}
	if m.filterErr == nil {
		t.Fatalf("filterErr = nil, want compile error")
	}
	if got := m.view.Spec().Pattern.Expr(); got != "disk" {
		t.Fatalf("Pattern = %q, want previous %q", got, "disk")
	}
	if !strings.Contains(m.View(), "invalid pattern") {
		t.Fatalf("View() does not show the pattern error")
	}

	m = press(t, m, "esc")
	if m.showFilters {
		t.Fatalf("filters modal still open after esc")
	}
	if got := m.view.Len(); got != 2 {
		t.Fatalf("visible after cancel = %d, want 2", got)
	}
}

func TestModelFilterModalLiteralMode(t *testing.T) {
	m, _, _ := newTestModel(t,
		rec("karaf", logparse.LevelInfo, "price (USD)"),
		rec("karaf", logparse.LevelInfo, "price USD"),
	)

	// "(USD)" as a regex matches both records; as a literal only one
	m = press(t, m, "F", "ctrl+r", "(USD)", "enter")
	if got := m.view.Len(); got != 1 {
		t.Fatalf("visible = %d, want 1", got)
	}
	if m.view.Spec().Pattern.IsRegex() {
		t.Fatalf("Pattern.IsRegex() = true, want false")
	}
}

func TestModelSearchNavigation(t *testing.T) {
	m, _, _ := newTestModel(t, sampleRecords()...)

	m = press(t, m, "/", "disk", "enter")
	if m.logState.searchActive {
		t.Fatalf("search input still open")
	}
	if got := m.view.MatchCount(); got != 2 {
		t.Fatalf("MatchCount = %d, want 2", got)
	}
	if got := m.view.Len(); got != 4 {
		t.Fatalf("search hid records: visible = %d, want 4", got)
	}

	pos, _, _ := m.view.Current()
	if pos != 1 {
		t.Fatalf("current = %d, want 1", pos)
	}

	m = press(t, m, "n")
	if pos, _, _ = m.view.Current(); pos != 2 {
		t.Fatalf("after n current = %d, want 2", pos)
	}
	m = press(t, m, "n")
	if pos, _, _ = m.view.Current(); pos != 1 {
		t.Fatalf("after wrap current = %d, want 1", pos)
	}
	m = press(t, m, "N")
	if pos, _, _ = m.view.Current(); pos != 2 {
		t.Fatalf("after N current = %d, want 2", pos)
	}

	m = press(t, m, "esc")
	if !m.view.Search().Empty() {
		t.Fatalf("search not cleared by esc")
	}
}

func TestModelInvalidSearchStaysOpen(t *testing.T) {
	m, _, _ := newTestModel(t, sampleRecords()...)

	m = press(t, m, "/", "ctrl+r", "([", "enter")
	if !m.logState.searchActive {
		t.Fatalf("search input closed on invalid regex")
	}
	if m.view.InputError() == nil {
		t.Fatalf("InputError = nil, want compile error")
	}
	if !m.view.Search().Empty() {
		t.Fatalf("Search = %q, want empty", m.view.Search().Expr())
	}
}

func TestModelPauseHoldsDisplay(t *testing.T) {
	m, store, _ := newTestModel(t, sampleRecords()...)

	m = press(t, m, "p")
	store.Append(rec("karaf", logparse.LevelInfo, "late arrival"))
	m = update(t, m, storeChangedMsg{})
	if got := m.view.Len(); got != 4 {
		t.Fatalf("paused visible = %d, want 4", got)
	}

	m = press(t, m, "p")
	if got := m.view.Len(); got != 5 {
		t.Fatalf("resumed visible = %d, want 5", got)
	}
}

func TestModelSwitchAndCloseSources(t *testing.T) {
	m, store, sessions := newTestModel(t, sampleRecords()...)
	store.Register("audit", "/opt/karaf/data/log/audit.log")
	store.Append(rec("audit", logparse.LevelInfo, "login admin"))
	m = update(t, m, storeChangedMsg{})

	if m.active != "karaf" {
		t.Fatalf("active = %q, want karaf", m.active)
	}

	m = press(t, m, "tab")
	if m.active != "audit" {
		t.Fatalf("active = %q, want audit", m.active)
	}
	if got := m.view.Len(); got != 1 {
		t.Fatalf("visible = %d, want 1", got)
	}

	m = press(t, m, "x")
	if len(sessions.closed) != 1 || sessions.closed[0] != "audit" {
		t.Fatalf("closed = %q, want [audit]", sessions.closed)
	}
	if m.active != "karaf" {
		t.Fatalf("active after close = %q, want karaf", m.active)
	}
	if got := m.view.Len(); got != 4 {
		t.Fatalf("visible after close = %d, want 4", got)
	}
}

func TestModelClearSource(t *testing.T) {
	m, store, _ := newTestModel(t, sampleRecords()...)

	m = press(t, m, "c")
	if got := m.view.Len(); got != 0 {
		t.Fatalf("visible = %d, want 0", got)
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("store.Len = %d, want 0", got)
	}
	if !strings.Contains(m.notice, "4 records cleared") {
		t.Fatalf("notice = %q, want cleared count", m.notice)
	}
}

func TestModelViewShowsRecords(t *testing.T) {
	m, _, _ := newTestModel(t, sampleRecords()...)

	out := m.View()
	for _, want := range []string{"karaflog", "karaf.log", "bundle 42 started", "disk full, write failed", "ERROR"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q", want)
		}
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, "?")
	if !m.showHelp {
		t.Fatalf("help not shown")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("View() missing help title")
	}

	m = press(t, m, "x")
	if m.showHelp {
		t.Fatalf("help still shown after key")
	}
}

func TestModelInitialSpec(t *testing.T) {
	pattern, err := filter.Compile("disk", false)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	store := &state.Store{}
	store.Register("karaf", "karaf.log")
	store.Append(sampleRecords()...)
	m := New(Options{
		Store:     store,
		Config:    config.Default(),
		Spec:      filter.Spec{MinLevel: logparse.LevelError, Pattern: pattern},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	t.Cleanup(m.unsub)

	if got := m.view.Len(); got != 1 {
		t.Fatalf("visible = %d, want 1", got)
	}
}

func TestModelDisplayLinesNarrowWidth(t *testing.T) {
	m, _, _ := newTestModel(t)
	full := "bundle 42 started"

	for _, width := range []int{1, 0, -3} {
		lines := m.displayLines(rec("karaf", logparse.LevelInfo, full), width)
		if len(lines) != 1 {
			t.Fatalf("width %d: lines = %q, want 1", width, lines)
		}
		if lines[0] == full {
			t.Fatalf("width %d: line = %q, want it truncated", width, lines[0])
		}
	}
}
