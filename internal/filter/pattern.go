package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternError reports an expression that does not compile.
type PatternError struct {
	Expr string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Pattern is a compiled filter or search expression. A regex pattern uses
// RE2 syntax and is case sensitive unless it opts out with (?i). A plain
// pattern is a case-insensitive substring. The zero Pattern is empty and
// matches everything.
type Pattern struct {
	expr  string
	regex bool
	re    *regexp.Regexp
	lower string
}

// Compile builds a Pattern. Surrounding whitespace is ignored; an empty
// expression yields the empty Pattern.
func Compile(expr string, regex bool) (Pattern, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Pattern{regex: regex}, nil
	}
	if !regex {
		return Pattern{expr: expr, lower: strings.ToLower(expr)}, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, &PatternError{Expr: expr, Err: err}
	}
	return Pattern{expr: expr, regex: true, re: re}, nil
}

// Empty reports whether the pattern matches everything.
func (p Pattern) Empty() bool { return p.expr == "" }

// Expr returns the source expression.
func (p Pattern) Expr() string { return p.expr }

// IsRegex reports whether the expression is a regular expression.
func (p Pattern) IsRegex() bool { return p.regex }

// Match reports whether text contains the pattern.
func (p Pattern) Match(text string) bool {
	switch {
	case p.Empty():
		return true
	case p.re != nil:
		return p.re.MatchString(text)
	default:
		return strings.Contains(strings.ToLower(text), p.lower)
	}
}

// Spans returns the byte ranges of every match in text, for highlighting.
func (p Pattern) Spans(text string) [][2]int {
	if p.Empty() {
		return nil
	}
	var spans [][2]int
	if p.re != nil {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if loc[1] > loc[0] {
				spans = append(spans, [2]int{loc[0], loc[1]})
			}
		}
		return spans
	}

	lowered := strings.ToLower(text)
	if len(lowered) != len(text) {
		// Case folding changed byte lengths; offsets would not line up.
		return nil
	}
	for start := 0; start < len(lowered); {
		idx := strings.Index(lowered[start:], p.lower)
		if idx < 0 {
			break
		}
		from := start + idx
		spans = append(spans, [2]int{from, from + len(p.lower)})
		start = from + len(p.lower)
	}
	return spans
}

// String renders the pattern for status lines: /expr/ for regexes and a
// quoted string otherwise.
func (p Pattern) String() string {
	if p.Empty() {
		return ""
	}
	if p.regex {
		return "/" + p.expr + "/"
	}
	return fmt.Sprintf("%q", p.expr)
}
