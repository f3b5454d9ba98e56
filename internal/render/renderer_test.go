// # internal/render/renderer_test.go
package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docref/internal/docstring"
	"docref/internal/model"
	"docref/internal/parser"
	"docref/internal/resolver"
	"docref/internal/scope"
)

func newRenderer(t *testing.T, files map[string]string) (*Renderer, *model.Model) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	p := parser.NewParser(parser.NewGrammarLoader())
	p.RegisterExtractor("python", &parser.PythonExtractor{})
	b, err := model.NewBuilder(p, []string{root}, model.BuilderOptions{})
	require.NoError(t, err)
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	res := resolver.New(scope.NewIndex(m))
	return NewRenderer(m, res, docstring.StyleAuto), m
}

var siteFiles = map[string]string{
	"pkg/__init__.py": `"""The pkg package."""`,
	"pkg/a.py": `"""Geometry primitives."""

class Point:
    """A point. See [the mover][pkg.b.move]."""

    def shift(self, dx: int) -> "Point":
        """Shift the point.

        Args:
            dx (int): Offset along x.

        Returns:
            Point: The shifted point.
        """
`,
	"pkg/b.py": `"""Operations on points."""
import numpy as np
from pkg.a import Point

def move(p: Point) -> Point:
    """Move a point.

    Uses [arrays][np.ndarray] and [nothing][does.not.exist].
    """
`,
}

func TestPagePath(t *testing.T) {
	assert.Equal(t, "pkg/a.md", PagePath("pkg.a"))
	assert.Equal(t, "pkg.md", PagePath("pkg"))
	assert.Equal(t, "pkg/sub/mod.md", PagePath("pkg.sub.mod"))
}

func TestModulePageLinksKeepLiteralText(t *testing.T) {
	r, m := newRenderer(t, siteFiles)

	page := r.ModulePage(m.Module("pkg.b"))

	// External through an alias: hover span with the expanded name.
	assert.Contains(t, page, `<span title="numpy.ndarray">arrays</span>`)
	// Unresolved: display text passes through untouched.
	assert.Contains(t, page, "and nothing.")
	assert.NotContains(t, page, "[nothing]")
}

func TestModulePageResolvedCrossModuleLink(t *testing.T) {
	r, m := newRenderer(t, siteFiles)

	page := r.ModulePage(m.Module("pkg.a"))
	assert.Contains(t, page, "[the mover](b.md#pkg.b.move)")
	assert.Contains(t, page, `<a id="pkg.a.Point"></a>`)
}

func TestModulePageSignatureAnnotations(t *testing.T) {
	r, m := newRenderer(t, siteFiles)

	page := r.ModulePage(m.Module("pkg.b"))
	// Parameter annotation resolves into a link on the type name.
	assert.Contains(t, page, "p: [Point](a.md#pkg.a.Point)")
}

func TestModulePageParameterTable(t *testing.T) {
	r, m := newRenderer(t, siteFiles)

	page := r.ModulePage(m.Module("pkg.a"))
	assert.Contains(t, page, "| Name | Type | Description |")
	assert.Contains(t, page, "| dx |")
	assert.Contains(t, page, "Offset along x.")
}

func TestModulePageSeeAlsoLinksBareNames(t *testing.T) {
	files := map[string]string{}
	for k, v := range siteFiles {
		files[k] = v
	}
	files["pkg/c.py"] = `"""Extras."""

def helper():
    """Assist.

    See Also:
        pkg.b.move : Moves a point.
        Related prose stays untouched.
    """
`

	r, m := newRenderer(t, files)
	page := r.ModulePage(m.Module("pkg.c"))

	assert.Contains(t, page, "[pkg.b.move](b.md#pkg.b.move) : Moves a point.")
	assert.Contains(t, page, "Related prose stays untouched.")
	assert.NotContains(t, page, "[Related")
}

func TestModulePageOrdersMembersByExports(t *testing.T) {
	r, m := newRenderer(t, map[string]string{
		"tools.py": `"""Helpers."""

__all__ = ["second", "_hidden", "first"]

def first():
    """First declared."""

def second():
    """Second declared."""

def _hidden():
    """Re-exported despite the underscore."""
`,
	})

	page := r.ModulePage(m.Module("tools"))

	second := strings.Index(page, `<a id="tools.second"></a>`)
	hidden := strings.Index(page, `<a id="tools._hidden"></a>`)
	first := strings.Index(page, `<a id="tools.first"></a>`)
	require.True(t, second >= 0 && hidden >= 0 && first >= 0)
	assert.Less(t, second, hidden)
	assert.Less(t, hidden, first)
}

func TestRenderingIsIdempotent(t *testing.T) {
	r, m := newRenderer(t, siteFiles)

	for _, mod := range m.Modules() {
		assert.Equal(t, r.ModulePage(mod), r.ModulePage(mod), "module %s", mod.Name)
	}
	assert.Equal(t, r.IndexPage(), r.IndexPage())
}

func TestIndexPageListsModules(t *testing.T) {
	r, _ := newRenderer(t, siteFiles)

	index := r.IndexPage()
	assert.Contains(t, index, "[pkg](pkg.md)")
	assert.Contains(t, index, "[pkg.a](pkg/a.md)")
	assert.Contains(t, index, "Geometry primitives.")
}

func TestSiteWriteAll(t *testing.T) {
	r, _ := newRenderer(t, siteFiles)
	out := t.TempDir()

	site := NewSite(r, out)
	require.NoError(t, site.WriteAll())

	for _, rel := range []string{"index.md", "pkg.md", "pkg/a.md", "pkg/b.md"} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}

	data, err := os.ReadFile(filepath.Join(out, "pkg", "a.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# <a id=\"pkg.a\"></a> pkg.a")
}
