package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	rtrunc "github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/five82/karaflog/internal/config"
	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/view"
)

// logState holds all log pane state.
type logState struct {
	follow bool
	paused bool
	wrap   bool

	// Search input
	searchActive bool
	searchRegex  bool
	searchInput  textinput.Model

	// rowStart[i] is the first content line of visible record i.
	rowStart []int

	// Content caching - skip re-render when unchanged
	contentVersion uint64
	lastRendered   uint64
}

func newLogState(cfg config.Config) logState {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search records"
	ti.CharLimit = 200

	return logState{
		follow:      cfg.Follow,
		wrap:        cfg.Wrap,
		searchInput: ti,
	}
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.height-logChromeHeight, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport resizes the viewport and re-renders its content when the
// records, the search or the theme changed.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}

	// Box height = m.height - 3 (header, cmdbar, status bar below)
	// Box inner = box height - 2 (top and bottom borders) = m.height - 5
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.height-logChromeHeight, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.contentVersion != m.logState.lastRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.lastRendered = m.logState.contentVersion
	}

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log pane and the status bar below it.
func (m Model) renderLogs() string {
	box := m.renderBox(m.logTitle(), m.logViewport.View(), m.width, m.height-3, true)
	return box + "\n" + m.renderLogStatus()
}

// logTitle returns the plain text title for the log pane.
func (m Model) logTitle() string {
	src, ok := m.activeSource()
	if !ok {
		return "No file"
	}
	title := truncateMiddle(src.Path, max(m.width-30, 20))
	if m.view.Spec().Active() {
		title += " (filtered)"
	}
	if m.logState.paused {
		title += " [paused]"
	}
	return title
}

// renderLogStatus renders the status bar below the log pane.
func (m Model) renderLogStatus() string {
	bg := NewBgStyle(m.theme.Background)
	styles := m.theme.Styles()
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()

	if m.logState.searchActive {
		mode := "plain"
		if m.logState.searchRegex {
			mode = "regex"
		}
		parts := []string{
			m.logState.searchInput.View(),
			bg.Render(mode, styles.AccentText),
		}
		if err := m.view.InputError(); err != nil {
			parts = append(parts, bg.Render(err.Error(), styles.DangerText))
		}
		parts = append(parts, bg.Render("ctrl+r regex  enter apply  esc cancel", styles.FaintText))
		return strings.Join(parts, sep)
	}

	var parts []string

	if m.notice != "" {
		style := styles.AccentText
		if m.noticeErr {
			style = styles.DangerText
		}
		parts = append(parts, bg.Render(m.notice, style))
	}

	if search := m.view.Search(); !search.Empty() {
		if m.view.MatchCount() == 0 {
			parts = append(parts, bg.Render("Pattern not found: "+search.Expr(), styles.DangerText))
		} else {
			current := "-"
			if pos, _, ok := m.view.Current(); ok {
				current = fmt.Sprintf("%d", pos)
			}
			parts = append(parts,
				bg.Render(search.String(), styles.AccentText)+bg.Space()+
					bg.Render(fmt.Sprintf("%s/%d", current, m.view.MatchCount()), styles.WarningText))
		}
	}

	total := 0
	if src, ok := m.activeSource(); ok {
		total = src.Records
		if src.Pending {
			total++
		}
	}
	parts = append(parts, bg.Render(
		fmt.Sprintf("%s/%s records", humanize.Comma(int64(m.view.Len())), humanize.Comma(int64(total))),
		styles.FaintText))

	follow := "follow off"
	if m.logState.follow {
		follow = "follow on"
	}
	parts = append(parts, bg.Render(follow, styles.FaintText))
	if m.logState.paused {
		parts = append(parts, bg.Render("paused", styles.WarningText))
	}
	if m.logState.wrap {
		parts = append(parts, bg.Render("wrap", styles.FaintText))
	}

	if spec := m.view.Spec(); spec.Active() {
		parts = append(parts, bg.Render("filter: "+spec.Summary(), styles.MutedText))
	}

	return strings.Join(parts, sep)
}

// renderLogContent renders the visible records, one or more lines each, and
// records where every record starts.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := m.logViewport.Width

	m.logState.rowStart = m.logState.rowStart[:0]

	if m.view.Len() == 0 {
		return bg.PadLine(bg.Render(m.emptyMessage(), styles.MutedText), width)
	}

	textWidth := max(width-gutterWidth, 1)
	search := m.view.Search()

	var b strings.Builder
	line := 0
	for i := range m.view.Len() {
		row := m.view.Row(i)
		m.logState.rowStart = append(m.logState.rowStart, line)
		textStyle := styles.Level(row.Color)

		for j, text := range m.displayLines(row.Record, textWidth) {
			if line > 0 {
				b.WriteString("\n")
			}

			badge := strings.Repeat(" ", badgeWidth)
			if j == 0 {
				badge = fmt.Sprintf("%-*s", badgeWidth, levelBadge(row.Record.Level))
			}
			var gutter string
			if row.Current {
				gutter = styles.Current.Render(badge)
			} else {
				gutter = bg.Render(badge, textStyle.Bold(true))
			}
			gutter += bg.Render(" │ ", styles.FaintText)

			var content string
			switch {
			case row.Current:
				content = styles.Current.Render(text)
			case row.Match:
				// Spans are found per display line, so a term cut by wrapping
				// or truncation is not highlighted even though the record
				// matched on its full text.
				content = highlightSpans(text, search.Spans(text), textStyle, styles.Selected, bg)
			default:
				content = bg.Render(text, textStyle)
			}

			b.WriteString(bg.PadLine(gutter+content, width))
			line++
		}
	}
	return b.String()
}

// displayLines splits a record into the lines shown for it at width.
func (m *Model) displayLines(rec logparse.Record, width int) []string {
	width = max(width, 1)
	var out []string
	for _, line := range rec.Lines() {
		line = strings.ReplaceAll(line, "\t", "    ")
		if !m.logState.wrap {
			out = append(out, rtrunc.StringWithTail(line, uint(width), "…"))
			continue
		}
		if line == "" {
			out = append(out, "")
			continue
		}
		wrapped := wrap.String(wordwrap.String(line, width), width)
		out = append(out, strings.Split(wrapped, "\n")...)
	}
	return out
}

// highlightSpans renders text with the given byte ranges in hl.
func highlightSpans(text string, spans [][2]int, base, hl lipgloss.Style, bg BgStyle) string {
	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		if sp[0] < prev || sp[1] > len(text) {
			continue
		}
		b.WriteString(bg.Render(text[prev:sp[0]], base))
		b.WriteString(hl.Render(text[sp[0]:sp[1]]))
		prev = sp[1]
	}
	b.WriteString(bg.Render(text[prev:], base))
	return b.String()
}

// levelBadge is the gutter label of a level.
func levelBadge(l logparse.Level) string {
	if l == logparse.LevelUnknown {
		return "·"
	}
	return l.String()
}

func (m Model) emptyMessage() string {
	src, ok := m.activeSource()
	switch {
	case !ok:
		return "No file open. Press o to choose one."
	case src.Failing():
		return "Cannot read " + src.Path + ": " + src.Err.Error()
	case src.Records == 0 && !src.Pending:
		return "Waiting for records..."
	default:
		return "No records match the filter"
	}
}

// handleLogsKey processes keyboard input for the log pane.
func (m *Model) handleLogsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()
		return nil

	case key.Matches(msg, m.keys.TogglePause):
		m.logState.paused = !m.logState.paused
		if m.logState.paused {
			return m.showNotice("Display paused")
		}
		m.refresh()
		return m.showNotice("Display resumed")

	case key.Matches(msg, m.keys.ToggleWrap):
		m.logState.wrap = !m.logState.wrap
		m.logState.contentVersion++
		m.updateLogViewport()
		return nil

	case key.Matches(msg, m.keys.CycleLevel):
		level := m.view.CycleLevel()
		m.applyView()
		if level == logparse.LevelUnknown {
			return m.showNotice("Showing all levels")
		}
		return m.showNotice("Showing " + level.String() + " and above")

	case key.Matches(msg, m.keys.Search):
		m.logState.searchActive = true
		m.logState.searchRegex = m.view.Search().IsRegex()
		m.logState.searchInput.SetValue(m.view.Search().Expr())
		m.logState.searchInput.CursorEnd()
		return m.logState.searchInput.Focus()

	case key.Matches(msg, m.keys.Filters):
		return m.openFilters()

	case key.Matches(msg, m.keys.NextMatch):
		if idx, ok := m.view.NextMatch(); ok {
			m.scrollToRecord(idx)
		}
		return nil

	case key.Matches(msg, m.keys.PrevMatch):
		if idx, ok := m.view.PrevMatch(); ok {
			m.scrollToRecord(idx)
		}
		return nil

	case key.Matches(msg, m.keys.Escape):
		if !m.view.Search().Empty() {
			m.view.ClearSearch()
			m.logState.contentVersion++
			m.updateLogViewport()
		}
		return nil

	case key.Matches(msg, m.keys.Copy):
		return m.copyRecord()

	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return nil

	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
		return nil

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = m.logViewport.AtBottom()
		return nil

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
		return nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = m.logViewport.AtBottom()
		return nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false
		return nil

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = m.logViewport.AtBottom()
		return nil

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
		return nil
	}

	return nil
}

// handleSearchInput handles keyboard input while the search line is open.
func (m *Model) handleSearchInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := strings.TrimSpace(m.logState.searchInput.Value())
		if query == "" {
			m.view.ClearSearch()
			m.closeSearchInput()
			m.logState.contentVersion++
			m.updateLogViewport()
			return nil
		}

		if err := m.view.SetSearch(query, m.logState.searchRegex); err != nil {
			// Invalid regex - stay in search mode, error shown inline
			return nil
		}
		m.closeSearchInput()

		if idx, ok := m.view.MatchFrom(m.topRecord()); ok {
			m.scrollToRecord(idx)
			return nil
		}
		m.logState.contentVersion++
		m.updateLogViewport()
		return nil

	case key.Matches(msg, m.keys.Escape):
		m.closeSearchInput()
		return nil

	case key.Matches(msg, m.keys.ToggleRegex):
		m.logState.searchRegex = !m.logState.searchRegex
		return nil
	}

	// Let the text input handle the key
	var cmd tea.Cmd
	m.logState.searchInput, cmd = m.logState.searchInput.Update(msg)
	return cmd
}

func (m *Model) closeSearchInput() {
	m.logState.searchActive = false
	m.logState.searchInput.Blur()
}

// applyView re-queries the store after the filter changed. A paused pane
// still follows filter changes.
func (m *Model) applyView() {
	if m.view.Refresh() {
		m.logState.contentVersion++
	}
	m.updateLogViewport()
}

// scrollToRecord centers the record at visible index idx.
func (m *Model) scrollToRecord(idx int) {
	m.logState.follow = false
	m.logState.contentVersion++ // Current match changed
	m.updateLogViewport()

	if idx < 0 || idx >= len(m.logState.rowStart) {
		return
	}
	target := m.logState.rowStart[idx]
	m.logViewport.SetYOffset(max(target-m.logViewport.Height/2, 0))
}

// topRecord returns the visible index of the record at the top of the pane.
func (m Model) topRecord() int {
	if len(m.logState.rowStart) == 0 {
		return 0
	}
	idx, found := slices.BinarySearch(m.logState.rowStart, m.logViewport.YOffset)
	if !found && idx > 0 {
		idx--
	}
	return idx
}

// copyRecord puts the current search match, or the newest visible record,
// on the clipboard.
func (m *Model) copyRecord() tea.Cmd {
	var rec logparse.Record
	if _, idx, ok := m.view.Current(); ok {
		rec = m.view.Row(idx).Record
	} else if n := m.view.Len(); n > 0 {
		rec = m.view.Row(n - 1).Record
	} else {
		return m.showNotice("Nothing to copy")
	}

	if err := clipboard.WriteAll(rec.Raw); err != nil {
		return m.showError(fmt.Errorf("copy to clipboard: %w", err))
	}
	return m.showNotice(fmt.Sprintf("Copied %s record (%s)", rec.Level, humanize.Bytes(uint64(len(rec.Raw)))))
}

// levelColorName is used by the help overlay legend.
func levelColorName(c view.Color) string {
	switch c {
	case view.ColorRed:
		return "red"
	case view.ColorYellow:
		return "yellow"
	case view.ColorGray:
		return "gray"
	default:
		return "default"
	}
}
