package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	rtrunc "github.com/muesli/reflow/truncate"

	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/state"
)

// renderHeader renders the top line: name, file tabs and the active file's
// watch status.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("karaflog", styles.Logo)}

	if tabs := m.renderTabs(styles, bg, compact); tabs != "" {
		parts = append(parts, tabs)
	}

	if src, ok := m.activeSource(); ok {
		parts = append(parts, m.renderSourceStatus(src, styles, bg, compact))
	} else {
		parts = append(parts, bg.Render("no file open", styles.MutedText))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(parts, "  "))
}

// renderTabs renders one tab per open file, the active one highlighted.
func (m Model) renderTabs(styles Styles, bg BgStyle, compact bool) string {
	if len(m.sources) == 0 {
		return ""
	}
	maxName := 24
	if compact {
		maxName = 12
	}

	tabs := make([]string, 0, len(m.sources))
	for _, src := range m.sources {
		name := truncate(displayName(src.Path), maxName)
		if src.Failing() {
			name = "!" + name
		}
		switch {
		case src.ID == m.active:
			tabs = append(tabs, styles.Selected.Render(" "+name+" "))
		case src.Failing():
			tabs = append(tabs, bg.Render(name, styles.DangerText))
		default:
			tabs = append(tabs, bg.Render(name, styles.MutedText))
		}
	}
	return strings.Join(tabs, bg.Space())
}

// renderSourceStatus shows whether the active file is being read, and if
// not, why and when the next attempt happens.
func (m Model) renderSourceStatus(src state.SourceStatus, styles Styles, bg BgStyle, compact bool) string {
	if src.Failing() {
		label := "● ERROR"
		if src.IsOffline() {
			label = "● OFFLINE"
		}
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts := []string{
			bg.Render(label, styles.DangerText),
			bg.Render(truncate(describeError(src.Err), maxErr), styles.DangerText),
		}
		if retry := formatRetry(src.NextRetry, time.Now()); retry != "" {
			parts = append(parts, bg.Render(retry, styles.WarningText))
		}
		return bg.Join(parts, "  ")
	}

	parts := []string{
		bg.Render("● watching", styles.SuccessText),
		bg.Render(humanize.Bytes(uint64(max(src.Size, 0))), styles.Text),
	}
	if !src.LastRead.IsZero() && !compact {
		parts = append(parts,
			bg.Render("updated", styles.MutedText)+bg.Space()+
				bg.Render(humanize.Time(src.LastRead), styles.MutedText))
	}
	if src.Rotations > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("rotated %d×", src.Rotations), styles.InfoText))
	}
	return bg.Join(parts, "  ")
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }

	followLabel := "Follow"
	if m.logState.follow {
		followLabel = "Unfollow"
	}
	pauseLabel := "Pause"
	if m.logState.paused {
		pauseLabel = "Resume"
	}
	levelLabel := "All"
	if lvl := m.view.Spec().MinLevel; lvl != logparse.LevelUnknown {
		levelLabel = lvl.String() + "+"
	}

	commands := []cmd{
		{"/", "Search"},
		{"n/N", "Next/Prev"},
		{"F", "Filter"},
		{"L", levelLabel}, // Shows current threshold
		{"Space", followLabel},
		{"p", pauseLabel},
		{"o", "Open"},
	}
	if len(m.sources) > 1 {
		commands = append(commands, cmd{"Tab", "File"})
	}
	commands = append(commands, cmd{"?", "More"})

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Show active search pattern
	if search := m.view.Search(); !search.Empty() {
		segments = append(segments, bg.Render(truncate(search.String(), 18), styles.AccentText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, sep))
}

// renderBox draws a rounded box with title in the top border. width and
// height include the border.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	borderColor := m.theme.Border
	if focused {
		borderColor = m.theme.BorderFocus
	}
	border := lipgloss.RoundedBorder()
	borderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(borderColor)).
		Background(lipgloss.Color(m.theme.Background))

	label := border.Top + " " + truncate(title, max(width-6, 1)) + " "
	fill := max(width-2-lipgloss.Width(label), 0)
	top := borderStyle.Render(border.TopLeft+label+strings.Repeat(border.Top, fill)+border.TopRight)

	body := lipgloss.NewStyle().
		Border(border, false, true, true, true).
		BorderForeground(lipgloss.Color(borderColor)).
		BorderBackground(lipgloss.Color(m.theme.Background)).
		Background(lipgloss.Color(m.theme.FocusBg)).
		Padding(0, 1).
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		MaxHeight(max(height-1, 0)).
		Render(content)

	return top + "\n" + body
}

// describeError returns a short description of a file access error.
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, os.ErrNotExist):
		return "file not found"
	case errors.Is(err, os.ErrPermission):
		return "permission denied"
	default:
		return err.Error()
	}
}

// formatRetry describes when the next read attempt happens.
func formatRetry(next, now time.Time) string {
	if next.IsZero() {
		return ""
	}
	d := next.Sub(now)
	if d <= 0 {
		return "retrying..."
	}
	return "retry in " + d.Round(time.Second).String()
}

// displayName is the file name shown in tabs and notices.
func displayName(path string) string {
	if path == "" {
		return "?"
	}
	return filepath.Base(path)
}

// plural formats a count with a noun, e.g. "1 record" or "3 records".
func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), noun)
}

// truncate truncates a string to max cells with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	if max <= 3 {
		return rtrunc.String(s, uint(max))
	}
	return rtrunc.StringWithTail(s, uint(max), "...")
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 5 {
		return string(r[:max])
	}
	// Keep more of the end (file name) than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(r[:startLen]) + "..." + string(r[len(r)-endLen:])
}
