package filter

import (
	"strings"

	"github.com/five82/karaflog/internal/logparse"
)

// Spec selects records. Every set field must match; unset fields match
// everything. A Spec is a value: change it by building a new one.
type Spec struct {
	// Source limits the result to one file. Empty means all sources.
	Source logparse.SourceID
	// MinLevel is the lowest severity shown. LevelUnknown disables the
	// threshold; with a threshold set, UNKNOWN records are hidden.
	MinLevel logparse.Level
	// Pattern is matched against the raw record text.
	Pattern Pattern
	// Term is a case-insensitive substring matched against the raw text.
	Term Pattern
}

// Match reports whether rec passes every predicate of s.
func (s Spec) Match(rec logparse.Record) bool {
	if s.Source != "" && rec.Source != s.Source {
		return false
	}
	if s.MinLevel != logparse.LevelUnknown && rec.Level < s.MinLevel {
		return false
	}
	if !s.Pattern.Match(rec.Raw) {
		return false
	}
	return s.Term.Match(rec.Raw)
}

// Active reports whether anything besides the source narrows the result.
func (s Spec) Active() bool {
	return s.MinLevel != logparse.LevelUnknown || !s.Pattern.Empty() || !s.Term.Empty()
}

// Summary describes the active predicates, e.g. "level≥WARN /timeout/".
func (s Spec) Summary() string {
	var parts []string
	if s.MinLevel != logparse.LevelUnknown {
		parts = append(parts, "level≥"+s.MinLevel.String())
	}
	if !s.Pattern.Empty() {
		parts = append(parts, s.Pattern.String())
	}
	if !s.Term.Empty() {
		parts = append(parts, s.Term.String())
	}
	return strings.Join(parts, " ")
}

// NextLevel returns the threshold that follows l in the cycle
// off → TRACE → DEBUG → INFO → WARN → ERROR → off.
func NextLevel(l logparse.Level) logparse.Level {
	if l >= logparse.LevelError {
		return logparse.LevelUnknown
	}
	return l + 1
}
