package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// openPickerCmd shows the file picker in the last used directory.
func (m *Model) openPickerCmd() tea.Cmd {
	m.openPicker()
	return m.picker.Init()
}

func (m *Model) openPicker() {
	fp := filepicker.New()
	fp.CurrentDirectory = m.startDir()
	fp.ShowPermissions = false
	fp.Styles.Selected = fp.Styles.Selected.Foreground(lipgloss.Color(m.theme.Accent))
	fp.Styles.Cursor = fp.Styles.Cursor.Foreground(lipgloss.Color(m.theme.Accent))
	m.picker = fp
	m.showPicker = true
	m.resizePicker()
}

// resizePicker fits the picker list into the pane below the header.
func (m *Model) resizePicker() {
	if !m.showPicker {
		return
	}
	m.picker, _ = m.picker.Update(tea.WindowSizeMsg{Width: m.width, Height: max(m.height-4, 1)})
}

// updatePicker forwards msg to the picker and opens the chosen file.
func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.showPicker = false
		return m, tea.Batch(cmd, m.openSource(path))
	}
	return m, cmd
}

// handlePickerKey handles keyboard input while the picker is open.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.showPicker = false
		return m, nil
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m.updatePicker(msg)
}

// renderPicker renders the file picker pane.
func (m Model) renderPicker() string {
	styles := m.theme.Styles()

	title := "Open file: " + truncateMiddle(m.picker.CurrentDirectory, max(m.width-20, 10))
	box := m.renderBox(title, m.picker.View(), m.width, m.height-3, true)

	hint := []string{"enter: Open", "h/←: Up", "esc: Cancel"}
	if len(m.sources) == 0 {
		hint[2] = "ctrl+c: Quit"
	}
	return box + "\n" + styles.FaintText.Render(" "+strings.Join(hint, "  •  "))
}
