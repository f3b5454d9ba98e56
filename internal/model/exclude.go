// # internal/model/exclude.go
package model

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// ExcludeMatcher matches fully qualified dotted names against glob
// patterns with * wildcards at name-segment granularity: "pkg.tests.*"
// matches "pkg.tests.util" but not "pkg.testsuite".
type ExcludeMatcher struct {
	globs []glob.Glob
}

func NewExcludeMatcher(patterns []string) (*ExcludeMatcher, error) {
	m := &ExcludeMatcher{}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether the name or any of its dotted ancestors matches an
// exclusion pattern, so excluding "pkg.tests.*" also removes
// "pkg.tests.util.deep".
func (m *ExcludeMatcher) Match(qualifiedName string) bool {
	if m == nil || qualifiedName == "" {
		return false
	}

	segments := strings.Split(qualifiedName, ".")
	for i := 1; i <= len(segments); i++ {
		prefix := strings.Join(segments[:i], ".")
		for _, g := range m.globs {
			if g.Match(prefix) {
				return true
			}
		}
	}
	return false
}
