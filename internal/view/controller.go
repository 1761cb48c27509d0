package view

import (
	"iter"
	"slices"

	"github.com/five82/karaflog/internal/filter"
	"github.com/five82/karaflog/internal/logparse"
)

// Color is the display class of a record.
type Color int

const (
	ColorDefault Color = iota
	ColorRed
	ColorYellow
	ColorGray
)

// LevelColor returns the fixed color class for a level.
func LevelColor(l logparse.Level) Color {
	switch l {
	case logparse.LevelError:
		return ColorRed
	case logparse.LevelWarn:
		return ColorYellow
	case logparse.LevelDebug, logparse.LevelTrace:
		return ColorGray
	default:
		return ColorDefault
	}
}

// Source is the record store as seen by the controller.
type Source interface {
	Query(spec filter.Spec) iter.Seq[logparse.Record]
	Version() uint64
}

// Row is one visible record prepared for rendering.
type Row struct {
	Record  logparse.Record
	Color   Color
	Match   bool
	Current bool
}

// Controller derives the visible records from a Source and tracks search
// state over them. It is meant to be driven from one goroutine.
type Controller struct {
	src      Source
	spec     filter.Spec
	search   filter.Pattern
	visible  []logparse.Record
	isMatch  []bool
	matches  []int
	current  int
	seen     uint64
	dirty    bool
	inputErr error
}

// New returns a controller showing src through spec.
func New(src Source, spec filter.Spec) *Controller {
	return &Controller{src: src, spec: spec, current: -1, dirty: true}
}

// Spec returns the active filter.
func (c *Controller) Spec() filter.Spec { return c.spec }

// SetSpec replaces the filter.
func (c *Controller) SetSpec(spec filter.Spec) {
	c.spec = spec
	c.dirty = true
}

// SetSource limits the view to one source; empty shows all.
func (c *Controller) SetSource(id logparse.SourceID) {
	if c.spec.Source == id {
		return
	}
	c.spec.Source = id
	c.current = -1
	c.dirty = true
}

// SetLevel sets the level threshold.
func (c *Controller) SetLevel(level logparse.Level) {
	c.spec.MinLevel = level
	c.dirty = true
}

// CycleLevel advances the threshold and returns the new one.
func (c *Controller) CycleLevel() logparse.Level {
	c.SetLevel(filter.NextLevel(c.spec.MinLevel))
	return c.spec.MinLevel
}

// SetFilter replaces the pattern and free-text term. If expr does not
// compile the active filter is left untouched and the error is kept for
// InputError.
func (c *Controller) SetFilter(expr string, regex bool, term string) error {
	pattern, err := filter.Compile(expr, regex)
	if err != nil {
		c.inputErr = err
		return err
	}
	text, _ := filter.Compile(term, false)
	c.inputErr = nil
	c.spec.Pattern = pattern
	c.spec.Term = text
	c.dirty = true
	return nil
}

// SetSearch replaces the search pattern. On a compile error the previous
// search stays active and the error is kept for InputError. An empty
// expression clears the search.
func (c *Controller) SetSearch(expr string, regex bool) error {
	pattern, err := filter.Compile(expr, regex)
	if err != nil {
		c.inputErr = err
		return err
	}
	c.inputErr = nil
	c.search = pattern
	c.current = -1
	c.recomputeMatches()
	return nil
}

// ClearSearch removes the search pattern and any pending input error.
func (c *Controller) ClearSearch() {
	c.search = filter.Pattern{}
	c.inputErr = nil
	c.current = -1
	c.recomputeMatches()
}

// Search returns the active search pattern.
func (c *Controller) Search() filter.Pattern { return c.search }

// InputError returns the last rejected filter or search expression error.
func (c *Controller) InputError() error { return c.inputErr }

// Refresh recomputes the visible records when the source or the filter
// changed since the last call. It reports whether anything was recomputed.
func (c *Controller) Refresh() bool {
	version := c.src.Version()
	if !c.dirty && version == c.seen {
		return false
	}
	c.seen = version
	c.dirty = false

	var currentSeq uint64
	hadCurrent := c.current >= 0 && c.current < len(c.matches)
	if hadCurrent {
		currentSeq = c.visible[c.matches[c.current]].Seq
	}

	c.visible = slices.Collect(c.src.Query(c.spec))
	c.recomputeMatches()

	c.current = -1
	if hadCurrent {
		for i, idx := range c.matches {
			if c.visible[idx].Seq >= currentSeq {
				c.current = i
				break
			}
		}
		if c.current < 0 && len(c.matches) > 0 {
			c.current = len(c.matches) - 1
		}
	}
	return true
}

func (c *Controller) recomputeMatches() {
	c.matches = c.matches[:0]
	c.isMatch = slices.Grow(c.isMatch[:0], len(c.visible))[:len(c.visible)]
	for i, rec := range c.visible {
		hit := !c.search.Empty() && c.search.Match(rec.Raw)
		c.isMatch[i] = hit
		if hit {
			c.matches = append(c.matches, i)
		}
	}
	if c.current >= len(c.matches) {
		c.current = -1
	}
}

// Visible returns the records that pass the filter, oldest first. The
// slice is owned by the controller and valid until the next Refresh.
func (c *Controller) Visible() []logparse.Record { return c.visible }

// Len returns the number of visible records.
func (c *Controller) Len() int { return len(c.visible) }

// Row returns the visible record at i with its render attributes.
func (c *Controller) Row(i int) Row {
	rec := c.visible[i]
	return Row{
		Record:  rec,
		Color:   LevelColor(rec.Level),
		Match:   c.isMatch[i],
		Current: c.current >= 0 && c.matches[c.current] == i,
	}
}

// Rows returns every visible record with its render attributes.
func (c *Controller) Rows() []Row {
	rows := make([]Row, len(c.visible))
	for i := range c.visible {
		rows[i] = c.Row(i)
	}
	return rows
}

// MatchCount returns the number of visible records matching the search.
func (c *Controller) MatchCount() int { return len(c.matches) }

// Current returns the 1-based position of the current match among all
// matches and the index of its record in Visible.
func (c *Controller) Current() (pos, index int, ok bool) {
	if c.current < 0 || c.current >= len(c.matches) {
		return 0, -1, false
	}
	return c.current + 1, c.matches[c.current], true
}

// NextMatch moves to the following match, wrapping past the last one, and
// returns the index of its record in Visible.
func (c *Controller) NextMatch() (int, bool) {
	if len(c.matches) == 0 {
		return -1, false
	}
	c.current = (c.current + 1) % len(c.matches)
	return c.matches[c.current], true
}

// PrevMatch moves to the preceding match, wrapping before the first one.
func (c *Controller) PrevMatch() (int, bool) {
	if len(c.matches) == 0 {
		return -1, false
	}
	if c.current <= 0 {
		c.current = len(c.matches) - 1
	} else {
		c.current--
	}
	return c.matches[c.current], true
}

// MatchFrom makes the first match at or after visible index start current,
// wrapping to the first match. It is used to jump from the scroll position.
func (c *Controller) MatchFrom(start int) (int, bool) {
	if len(c.matches) == 0 {
		return -1, false
	}
	c.current = 0
	for i, idx := range c.matches {
		if idx >= start {
			c.current = i
			break
		}
	}
	return c.matches[c.current], true
}
