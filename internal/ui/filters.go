package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/karaflog/internal/filter"
)

// initFilterInputs initializes the text inputs of the filters modal.
func (m *Model) initFilterInputs() {
	patternInput := textinput.New()
	patternInput.Placeholder = "e.g. org.apache.camel|Exception"
	patternInput.CharLimit = 200
	patternInput.Width = 30

	textInput := textinput.New()
	textInput.Placeholder = "e.g. bundle 42"
	textInput.CharLimit = 200
	textInput.Width = 30

	m.filterInputs[0] = patternInput
	m.filterInputs[1] = textInput
	m.filterRegex = true
}

// openFilters opens the filters modal pre-filled with the active filter.
func (m *Model) openFilters() tea.Cmd {
	spec := m.view.Spec()
	m.filterInputs[0].SetValue(spec.Pattern.Expr())
	m.filterInputs[1].SetValue(spec.Term.Expr())
	m.filterInputs[0].CursorEnd()
	m.filterInputs[1].CursorEnd()
	m.filterRegex = spec.Pattern.Empty() || spec.Pattern.IsRegex()
	m.filterErr = nil
	m.filterFocusIdx = 0
	m.filterInputs[1].Blur()
	m.showFilters = true
	return m.filterInputs[0].Focus()
}

// handleFiltersKey handles keyboard input for the filters modal.
func (m Model) handleFiltersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.showFilters = false
		m.filterErr = nil
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		pattern := strings.TrimSpace(m.filterInputs[0].Value())
		text := strings.TrimSpace(m.filterInputs[1].Value())
		if err := m.view.SetFilter(pattern, m.filterRegex, text); err != nil {
			// Keep the modal open; the previous filter stays active
			m.filterErr = err
			return m, nil
		}
		m.filterErr = nil
		m.showFilters = false
		m.applyView()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m, m.focusFilterInput((m.filterFocusIdx + 1) % len(m.filterInputs))

	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.focusFilterInput((m.filterFocusIdx - 1 + len(m.filterInputs)) % len(m.filterInputs))

	case key.Matches(msg, m.keys.ToggleRegex):
		m.filterRegex = !m.filterRegex
		m.filterErr = nil
		return m, nil

	case key.Matches(msg, m.keys.ClearInputs):
		// Clear the fields (modal-specific, doesn't quit)
		for i := range m.filterInputs {
			m.filterInputs[i].SetValue("")
		}
		m.filterErr = nil
		return m, nil
	}

	// Let the focused input handle the key
	var cmd tea.Cmd
	m.filterInputs[m.filterFocusIdx], cmd = m.filterInputs[m.filterFocusIdx].Update(msg)
	return m, cmd
}

func (m *Model) focusFilterInput(idx int) tea.Cmd {
	m.filterInputs[m.filterFocusIdx].Blur()
	m.filterFocusIdx = idx
	return m.filterInputs[idx].Focus()
}

// renderFilters renders the filters modal.
func (m Model) renderFilters() string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Filters"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")

	b.WriteString(styles.MutedText.Render("Records must match both fields."))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Leave blank to disable a filter."))
	b.WriteString("\n\n")

	labels := []string{"Pattern: ", "Text:    "}
	for i, label := range labels {
		if m.filterFocusIdx == i {
			label = styles.AccentText.Render(label)
		} else {
			label = styles.MutedText.Render(label)
		}
		b.WriteString(label)
		b.WriteString(m.filterInputs[i].View())
		b.WriteString("\n\n")
	}

	mode := "literal"
	if m.filterRegex {
		mode = "regex"
	}
	b.WriteString(styles.MutedText.Render("Pattern mode: "))
	b.WriteString(styles.InfoText.Render(mode))
	b.WriteString(styles.FaintText.Render("  (Ctrl+R)"))
	b.WriteString("\n")

	if m.filterErr != nil {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(truncate(filterErrorText(m.filterErr), 44)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.FaintText.Render("Enter: Apply  •  Esc: Cancel  •  Ctrl+C: Clear"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(50)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// filterErrorText shortens a pattern error to the regexp message.
func filterErrorText(err error) string {
	var perr *filter.PatternError
	if errors.As(err, &perr) && perr.Err != nil {
		return "invalid pattern: " + perr.Err.Error()
	}
	return err.Error()
}
