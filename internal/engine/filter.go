package engine

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter narrows eligibility by qualified unit name. Patterns use '/' as
// separator, so "com/acme/*" matches one package and "com/acme/**" the
// whole tree. An empty include list admits everything; exclude wins.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = compileAll(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compileAll(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for i, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern %q at index %d: %w", p, i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Match reports whether unit passes the filter. A nil filter matches all.
func (f *Filter) Match(unit string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(unit) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(unit) {
			return true
		}
	}
	return false
}
