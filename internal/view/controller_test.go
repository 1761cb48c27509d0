package view

import (
	"errors"
	"testing"

	"github.com/five82/karaflog/internal/filter"
	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/state"
)

func newStore(t *testing.T, records ...logparse.Record) *state.Store {
	t.Helper()
	s := &state.Store{}
	s.Register("a", "a.log")
	s.Append(records...)
	return s
}

func r(level logparse.Level, raw string) logparse.Record {
	return logparse.Record{Source: "a", Level: level, Raw: raw, Message: raw}
}

func raws(c *Controller) []string {
	var out []string
	for _, rec := range c.Visible() {
		out = append(out, rec.Raw)
	}
	return out
}

func TestLevelColor(t *testing.T) {
	tests := map[logparse.Level]Color{
		logparse.LevelError:   ColorRed,
		logparse.LevelWarn:    ColorYellow,
		logparse.LevelInfo:    ColorDefault,
		logparse.LevelDebug:   ColorGray,
		logparse.LevelTrace:   ColorGray,
		logparse.LevelUnknown: ColorDefault,
	}
	for level, want := range tests {
		if got := LevelColor(level); got != want {
			t.Fatalf("LevelColor(%v) = %v, want %v", level, got, want)
		}
	}
}

func TestControllerLevelFilter(t *testing.T) {
	s := newStore(t,
		r(logparse.LevelInfo, "info"),
		r(logparse.LevelError, "error"),
		r(logparse.LevelDebug, "debug"),
	)
	c := New(s, filter.Spec{})
	c.Refresh()
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	c.SetLevel(logparse.LevelError)
	if !c.Refresh() {
		t.Fatalf("Refresh after SetLevel = false, want true")
	}
	if got := raws(c); len(got) != 1 || got[0] != "error" {
		t.Fatalf("visible = %q, want [error]", got)
	}
	if c.Row(0).Color != ColorRed {
		t.Fatalf("Row color = %v, want red", c.Row(0).Color)
	}
}

func TestControllerRefreshOnlyWhenChanged(t *testing.T) {
	s := newStore(t, r(logparse.LevelInfo, "one"))
	c := New(s, filter.Spec{})
	if !c.Refresh() {
		t.Fatalf("first Refresh = false")
	}
	if c.Refresh() {
		t.Fatalf("Refresh without changes = true")
	}
	s.Append(r(logparse.LevelInfo, "two"))
	if !c.Refresh() || c.Len() != 2 {
		t.Fatalf("Refresh after append: Len = %d, want 2", c.Len())
	}
}

func TestControllerInvalidRegexKeepsPreviousFilter(t *testing.T) {
	s := newStore(t,
		r(logparse.LevelInfo, "db timeout"),
		r(logparse.LevelInfo, "all good"),
	)
	c := New(s, filter.Spec{})
	if err := c.SetFilter("timeout", true, ""); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	c.Refresh()
	before := raws(c)

	err := c.SetFilter("([", true, "")
	var perr *filter.PatternError
	if !errors.As(err, &perr) {
		t.Fatalf("SetFilter error = %v, want PatternError", err)
	}
	if c.InputError() == nil {
		t.Fatalf("InputError() = nil, want error")
	}
	c.Refresh()
	after := raws(c)
	if len(after) != len(before) || after[0] != "db timeout" {
		t.Fatalf("visible after invalid regex = %q, want %q", after, before)
	}
	if c.Spec().Pattern.Expr() != "timeout" {
		t.Fatalf("Pattern = %q, want timeout", c.Spec().Pattern.Expr())
	}

	if err := c.SetFilter("", true, "GOOD"); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	if c.InputError() != nil {
		t.Fatalf("InputError() = %v, want nil after valid input", c.InputError())
	}
	c.Refresh()
	if got := raws(c); len(got) != 1 || got[0] != "all good" {
		t.Fatalf("visible = %q, want [all good]", got)
	}
}

func TestControllerSearchMarksWithoutHiding(t *testing.T) {
	s := newStore(t,
		r(logparse.LevelInfo, "alpha"),
		r(logparse.LevelInfo, "beta"),
		r(logparse.LevelInfo, "alphabet"),
	)
	c := New(s, filter.Spec{})
	c.Refresh()
	if err := c.SetSearch("alpha", false); err != nil {
		t.Fatalf("SetSearch: %v", err)
	}

	if c.Len() != 3 {
		t.Fatalf("search hid records: Len = %d", c.Len())
	}
	if c.MatchCount() != 2 {
		t.Fatalf("MatchCount = %d, want 2", c.MatchCount())
	}
	rows := c.Rows()
	if !rows[0].Match || rows[1].Match || !rows[2].Match {
		t.Fatalf("match flags = %v %v %v", rows[0].Match, rows[1].Match, rows[2].Match)
	}
}

func TestControllerSearchWrapAround(t *testing.T) {
	s := newStore(t,
		r(logparse.LevelInfo, "hit 1"),
		r(logparse.LevelInfo, "miss"),
		r(logparse.LevelInfo, "hit 2"),
	)
	c := New(s, filter.Spec{})
	c.Refresh()
	c.SetSearch("hit", false)

	want := []int{0, 2, 0, 2}
	for i, w := range want {
		got, ok := c.NextMatch()
		if !ok || got != w {
			t.Fatalf("NextMatch #%d = %d, want %d", i, got, w)
		}
	}

	got, _ := c.PrevMatch()
	if got != 0 {
		t.Fatalf("PrevMatch = %d, want 0", got)
	}
	got, _ = c.PrevMatch()
	if got != 2 {
		t.Fatalf("PrevMatch wrap = %d, want 2", got)
	}
	if pos, idx, ok := c.Current(); !ok || pos != 2 || idx != 2 {
		t.Fatalf("Current = %d, %d, %v; want 2, 2, true", pos, idx, ok)
	}
	if !c.Row(2).Current || c.Row(0).Current {
		t.Fatalf("Current flags not set on row 2 only")
	}
}

func TestControllerCurrentMatchSticksAcrossRefresh(t *testing.T) {
	s := newStore(t,
		r(logparse.LevelInfo, "hit 1"),
		r(logparse.LevelInfo, "hit 2"),
	)
	c := New(s, filter.Spec{})
	c.Refresh()
	c.SetSearch("hit", false)
	c.NextMatch()
	c.NextMatch()

	s.Append(r(logparse.LevelInfo, "hit 3"))
	c.Refresh()
	if _, idx, ok := c.Current(); !ok || c.Visible()[idx].Raw != "hit 2" {
		t.Fatalf("current match moved to %d after append", idx)
	}
}

func TestControllerInvalidSearchKeepsPrevious(t *testing.T) {
	s := newStore(t, r(logparse.LevelInfo, "x"))
	c := New(s, filter.Spec{})
	c.Refresh()
	c.SetSearch("x", true)
	if err := c.SetSearch("[", true); err == nil {
		t.Fatalf("SetSearch(\"[\") error = nil")
	}
	if c.Search().Expr() != "x" || c.MatchCount() != 1 {
		t.Fatalf("search = %q (%d matches), want previous", c.Search().Expr(), c.MatchCount())
	}
	c.ClearSearch()
	if c.InputError() != nil || c.MatchCount() != 0 {
		t.Fatalf("ClearSearch left error=%v matches=%d", c.InputError(), c.MatchCount())
	}
}

func TestControllerMatchFrom(t *testing.T) {
	s := newStore(t,
		r(logparse.LevelInfo, "hit"),
		r(logparse.LevelInfo, "miss"),
		r(logparse.LevelInfo, "miss"),
		r(logparse.LevelInfo, "hit"),
	)
	c := New(s, filter.Spec{})
	c.Refresh()
	c.SetSearch("hit", false)
	if got, _ := c.MatchFrom(1); got != 3 {
		t.Fatalf("MatchFrom(1) = %d, want 3", got)
	}
	if got, _ := c.MatchFrom(4); got != 0 {
		t.Fatalf("MatchFrom(4) = %d, want wrap to 0", got)
	}
}

func TestControllerCycleLevel(t *testing.T) {
	c := New(newStore(t), filter.Spec{})
	if got := c.CycleLevel(); got != logparse.LevelTrace {
		t.Fatalf("CycleLevel = %v, want TRACE", got)
	}
	c.SetLevel(logparse.LevelError)
	if got := c.CycleLevel(); got != logparse.LevelUnknown {
		t.Fatalf("CycleLevel from ERROR = %v, want off", got)
	}
}
