package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/logtail"
	"github.com/five82/karaflog/internal/state"
	"github.com/five82/karaflog/internal/view"
)

// CatOptions select what Cat prints.
type CatOptions struct {
	Level  string
	Filter string
	Search string
	// Name identifies the input in errors.
	Name string
}

// Cat parses everything in r and writes the matching records to w, colored
// by level when w is a terminal. It returns the number of records written.
func Cat(w io.Writer, r io.Reader, opts CatOptions) (int, error) {
	spec, err := buildSpec(opts.Level, opts.Filter, opts.Search)
	if err != nil {
		return 0, err
	}

	name := opts.Name
	if name == "" {
		name = "stdin"
	}
	id := logparse.SourceID(name)

	records, err := logtail.ReadAll(r, logparse.NewKaraf(nil), id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	var store state.Store
	store.Register(id, name)
	store.Append(records...)

	ctrl := view.New(&store, spec)
	ctrl.Refresh()

	styles := newCatStyles(lipgloss.NewRenderer(w))
	var b strings.Builder
	for _, row := range ctrl.Rows() {
		style := styles.forColor(row.Color)
		for _, line := range row.Record.Lines() {
			b.WriteString(style.Render(line))
			b.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}
	return ctrl.Len(), nil
}

type catStyles struct {
	plain, red, yellow, gray lipgloss.Style
}

func newCatStyles(r *lipgloss.Renderer) catStyles {
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return catStyles{
		plain:  base,
		red:    base.Foreground(lipgloss.ANSIColor(1)),
		yellow: base.Foreground(lipgloss.ANSIColor(3)),
		gray:   base.Foreground(lipgloss.ANSIColor(8)),
	}
}

func (s catStyles) forColor(c view.Color) lipgloss.Style {
	switch c {
	case view.ColorRed:
		return s.red
	case view.ColorYellow:
		return s.yellow
	case view.ColorGray:
		return s.gray
	}
	return s.plain
}
