package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/karaflog/internal/view"
)

// Theme is a named color palette. Colors are hex strings.
type Theme struct {
	Name string

	Background string // behind modals and the status line
	Surface    string // header and command bar
	SurfaceAlt string // inactive tabs
	FocusBg    string // log pane

	SelectionBg   string // active tab, search matches
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style // search match
	Current  lipgloss.Style // current search match
}

// Styles builds the styles for t.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   fg(t.Text).Background(lipgloss.Color(t.Surface)).Padding(0, 1),
		Logo:     fg(t.Accent).Bold(true),
		Selected: fg(t.SelectionText).Background(lipgloss.Color(t.SelectionBg)),
		Current:  fg(t.Background).Background(lipgloss.Color(t.Warning)).Bold(true),
	}
}

// Level returns the text style for a record color class.
func (s Styles) Level(c view.Color) lipgloss.Style {
	switch c {
	case view.ColorRed:
		return s.DangerText
	case view.ColorYellow:
		return s.WarningText
	case view.ColorGray:
		return s.FaintText
	default:
		return s.Text
	}
}

// WithBackground returns a copy of s whose text styles draw on bgColor.
// Highlights keep their own background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}

const defaultTheme = "Tokyonight"

var themeList = []Theme{
	{
		// https://github.com/folke/tokyonight.nvim (night)
		Name:          "Tokyonight",
		Background:    "#16161e", // bg_dark
		Surface:       "#1f2335", // bg_statusline
		SurfaceAlt:    "#292e42", // bg_highlight
		FocusBg:       "#1a1b26", // bg
		SelectionBg:   "#3d59a1", // blue0
		SelectionText: "#c0caf5", // fg
		Border:        "#414868", // terminal_black
		BorderFocus:   "#7aa2f7", // blue
		Text:          "#c0caf5", // fg
		Muted:         "#a9b1d6", // fg_dark
		Faint:         "#565f89", // comment
		Accent:        "#7aa2f7", // blue
		Success:       "#9ece6a", // green
		Warning:       "#e0af68", // yellow
		Danger:        "#f7768e", // red
		Info:          "#7dcfff", // cyan
	},
	{
		// https://github.com/morhetz/gruvbox (dark, hard)
		Name:          "Gruvbox",
		Background:    "#1d2021", // bg0_h
		Surface:       "#3c3836", // bg1
		SurfaceAlt:    "#504945", // bg2
		FocusBg:       "#282828", // bg0
		SelectionBg:   "#665c54", // bg3
		SelectionText: "#fbf1c7", // fg0
		Border:        "#665c54", // bg3
		BorderFocus:   "#fe8019", // orange
		Text:          "#ebdbb2", // fg1
		Muted:         "#a89984", // fg4
		Faint:         "#928374", // gray
		Accent:        "#83a598", // blue
		Success:       "#b8bb26", // green
		Warning:       "#fabd2f", // yellow
		Danger:        "#fb4934", // red
		Info:          "#8ec07c", // aqua
	},
	{
		// https://www.nordtheme.com/docs/colors-and-palettes
		Name:          "Nord",
		Background:    "#242933",
		Surface:       "#3b4252", // nord1
		SurfaceAlt:    "#434c5e", // nord2
		FocusBg:       "#2e3440", // nord0
		SelectionBg:   "#5e81ac", // nord10
		SelectionText: "#eceff4", // nord6
		Border:        "#4c566a", // nord3
		BorderFocus:   "#88c0d0", // nord8
		Text:          "#d8dee9", // nord4
		Muted:         "#aeb3bb",
		Faint:         "#7b88a1",
		Accent:        "#88c0d0", // nord8
		Success:       "#a3be8c", // nord14
		Warning:       "#ebcb8b", // nord13
		Danger:        "#bf616a", // nord11
		Info:          "#8fbcbb", // nord7
	},
}

// GetTheme returns the theme called name, or the default theme.
func GetTheme(name string) Theme {
	for _, t := range themeList {
		if t.Name == name {
			return t
		}
	}
	return themeList[0]
}

// NextTheme returns the theme name after current in the cycle.
func NextTheme(current string) string {
	names := ThemeNames()
	for i, name := range names {
		if name == current {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// ThemeNames lists the themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themeList))
	for i, t := range themeList {
		names[i] = t.Name
	}
	return names
}
