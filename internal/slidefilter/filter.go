package slidefilter

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects slide filenames by glob. An empty filter matches all.
type Filter struct {
	include []string
	exclude []string
}

// New builds a filter. Patterns use doublestar syntax, so "1.*.html"
// selects the first chapter and "{1,3}.*" chapters one and three.
func New(include, exclude []string) (*Filter, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// Match reports whether name passes the filter.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 && !matchesAny(name, f.include) {
		return false
	}
	return !matchesAny(name, f.exclude)
}

// Apply returns the matching names in their original order.
func (f *Filter) Apply(names []string) []string {
	var out []string
	for _, n := range names {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// matchesAny checks name, and its base name when it contains a directory,
// against each pattern.
func matchesAny(name string, patterns []string) bool {
	normalized := strings.ReplaceAll(name, "\\", "/")
	base := path.Base(normalized)
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
		if base != normalized {
			if matched, err := doublestar.Match(pattern, base); err == nil && matched {
				return true
			}
		}
	}
	return false
}
