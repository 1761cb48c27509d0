package app

import (
	"fmt"

	"github.com/five82/karaflog/internal/filter"
	"github.com/five82/karaflog/internal/logparse"
)

// buildSpec turns the textual flags into a filter. The pattern is a regular
// expression; term is a plain substring.
func buildSpec(level, pattern, term string) (filter.Spec, error) {
	var spec filter.Spec

	lvl, ok := logparse.LevelFromName(level)
	if !ok {
		return filter.Spec{}, fmt.Errorf("unknown level %q", level)
	}
	spec.MinLevel = lvl

	p, err := filter.Compile(pattern, true)
	if err != nil {
		return filter.Spec{}, fmt.Errorf("filter: %w", err)
	}
	spec.Pattern = p

	t, err := filter.Compile(term, false)
	if err != nil {
		return filter.Spec{}, fmt.Errorf("search: %w", err)
	}
	spec.Term = t

	return spec, nil
}
