// # internal/model/builder_test.go
package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docref/internal/parser"
)

func newTestBuilder(t *testing.T, root string, opts BuilderOptions) *Builder {
	t.Helper()
	p := parser.NewParser(parser.NewGrammarLoader())
	p.RegisterExtractor("python", &parser.PythonExtractor{})

	b, err := NewBuilder(p, []string{root}, opts)
	require.NoError(t, err)
	return b
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestBuildBasicTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": `"""The pkg package."""`,
		"pkg/a.py": `"""Module a."""

class Base:
    """Base class. Extra detail follows."""

    def run(self):
        """Run the task."""
`,
		"pkg/b.py": `from pkg.a import Base

class Sub(Base):
    pass
`,
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	pkg := m.Root("pkg")
	require.NotNil(t, pkg)
	assert.Equal(t, KindPackage, pkg.Kind)
	assert.Equal(t, "The pkg package.", pkg.Docstring)

	base := m.Lookup("pkg.a.Base")
	require.NotNil(t, base)
	assert.Equal(t, KindClass, base.Kind)
	assert.Equal(t, "Base class.", base.Summary())

	run := m.Lookup("pkg.a.Base.run")
	require.NotNil(t, run)
	assert.Equal(t, KindMethod, run.Kind)
	assert.Same(t, base, run.Class)
	assert.Same(t, m.Module("pkg.a"), run.OwningModule())

	sub := m.Lookup("pkg.b.Sub")
	require.NotNil(t, sub)
	require.Len(t, sub.Bases, 1)
	assert.Same(t, base, sub.Bases[0])
	require.Len(t, sub.MRO, 2)
	assert.Same(t, sub, sub.MRO[0])
	assert.Same(t, base, sub.MRO[1])
}

func TestBuildQualifiedNamesAreUniqueAndStable(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "class A:\n    pass\n",
		"pkg/b.py":        "class B:\n    pass\n",
	})

	b := newTestBuilder(t, root, BuilderOptions{})

	m1, err := b.Build(context.Background())
	require.NoError(t, err)
	m2, err := b.Build(context.Background())
	require.NoError(t, err)

	// Idempotent across rebuilds with no source changes.
	var names1, names2 []string
	for _, mod := range m1.Modules() {
		names1 = append(names1, mod.Name)
	}
	for _, mod := range m2.Modules() {
		names2 = append(names2, mod.Name)
	}
	assert.Equal(t, names1, names2)
	assert.Equal(t, m1.EntityCount(), m2.EntityCount())
}

func TestBuildUnderscoreExclusionAndAllReinclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/m.py": `__all__ = ["_helper"]

def _helper():
    """Re-exported despite the underscore."""

def _hidden():
    pass

class C:
    def _private(self):
        pass

    def public(self):
        pass
`,
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, m.Lookup("pkg.m._helper"))
	assert.Nil(t, m.Lookup("pkg.m._hidden"))
	assert.Nil(t, m.Lookup("pkg.m.C._private"))
	assert.NotNil(t, m.Lookup("pkg.m.C.public"))
}

func TestBuildPropertyAccessorsFoldIntoProperty(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `class Point:
    @property
    def x(self):
        """The x coordinate."""
        return self._x

    @x.setter
    def x(self, value):
        self._x = value

    @x.deleter
    def x(self):
        del self._x
`,
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	point := m.Lookup("pkg.a.Point")
	require.NotNil(t, point)
	require.Len(t, point.Children, 1)

	x := m.Lookup("pkg.a.Point.x")
	require.NotNil(t, x)
	assert.Equal(t, KindProperty, x.Kind)
	assert.Equal(t, "The x coordinate.", x.Docstring)
}

func TestBuildRedefinitionLastWriteWins(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `from typing import overload

@overload
def scale(v: int) -> int: ...

@overload
def scale(v: float) -> float: ...

def scale(v):
    """Scale a value."""
    return v * 2
`,
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	mod := m.Module("pkg.a")
	require.NotNil(t, mod)
	require.Len(t, mod.Children, 1)

	scale := m.Lookup("pkg.a.scale")
	require.NotNil(t, scale)
	assert.Equal(t, "Scale a value.", scale.Docstring)
}

func TestBuildExcludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py":       "",
		"pkg/core.py":           "class Thing:\n    pass\n",
		"pkg/tests/__init__.py": "",
		"pkg/tests/test_x.py":   "class TestX:\n    pass\n",
	})

	b := newTestBuilder(t, root, BuilderOptions{ExcludePatterns: []string{"pkg.tests.*"}})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, m.Lookup("pkg.core.Thing"))
	assert.Nil(t, m.Lookup("pkg.tests.test_x"))
	assert.Nil(t, m.Lookup("pkg.tests.test_x.TestX"))
}

func TestBuildImportBindings(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "class Base:\n    pass\n",
		"pkg/c.py": `import numpy as np
from pkg.a import Base as B
from . import a
`,
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	mod := m.Module("pkg.c")
	require.NotNil(t, mod)

	byName := make(map[string]string)
	for _, binding := range mod.Imports {
		byName[binding.Name] = binding.Target
	}
	assert.Equal(t, "numpy", byName["np"])
	assert.Equal(t, "pkg.a.Base", byName["B"])
	assert.Equal(t, "pkg.a", byName["a"])
}

func TestBuildParseFailureIsDiagnosticNotFatal(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/good.py":     "class Good:\n    pass\n",
		"pkg/broken.py":   "def broken(:\n",
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, m.Lookup("pkg.good.Good"))
	assert.Nil(t, m.Module("pkg.broken"))

	require.NotEmpty(t, m.Diagnostics)
	assert.Equal(t, SeverityError, m.Diagnostics[0].Severity)
	assert.Contains(t, m.Diagnostics[0].File, "broken.py")
}

func TestRebuildReplacesModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "class Old:\n    pass\n",
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m.Lookup("pkg.a.Old"))

	path := filepath.Join(root, "pkg", "a.py")
	require.NoError(t, os.WriteFile(path, []byte("class New:\n    pass\n"), 0o600))

	require.NoError(t, b.Rebuild(m, path))
	assert.Nil(t, m.Lookup("pkg.a.Old"))
	assert.NotNil(t, m.Lookup("pkg.a.New"))
}

func TestRebuildPackageInitKeepsSubmodules(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": `"""Old package doc."""`,
		"pkg/a.py":        "class A:\n    pass\n",
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	path := filepath.Join(root, "pkg", "__init__.py")
	require.NoError(t, os.WriteFile(path, []byte(`"""New package doc."""`), 0o600))
	require.NoError(t, b.Rebuild(m, path))

	pkg := m.Module("pkg")
	require.NotNil(t, pkg)
	assert.Equal(t, "New package doc.", pkg.Docstring)

	sub := m.Module("pkg.a")
	require.NotNil(t, sub)
	assert.Same(t, pkg, sub.Parent)
	assert.NotNil(t, m.Lookup("pkg.a.A"))
	assert.Same(t, sub, pkg.Child("a"))
}

func TestRebuildPackageKeepsSameNamedRoot(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.py":              "class Top:\n    pass\n",
		"pkg/__init__.py":   "",
		"pkg/b/__init__.py": `"""Subpackage b."""`,
		"pkg/b/c.py":        "class C:\n    pass\n",
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m.Root("b"))

	path := filepath.Join(root, "pkg", "b", "__init__.py")
	require.NoError(t, os.WriteFile(path, []byte(`"""Updated."""`), 0o600))
	require.NoError(t, b.Rebuild(m, path))

	top := m.Root("b")
	require.NotNil(t, top)
	assert.Equal(t, "b", top.Name)
	assert.NotNil(t, m.Lookup("b.Top"))

	sub := m.Module("pkg.b")
	require.NotNil(t, sub)
	assert.Equal(t, "Updated.", sub.Docstring)
	assert.NotNil(t, m.Lookup("pkg.b.c.C"))
}

func TestRebuildErrorLeavesConsistentModel(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `class Base:
    pass
`,
		"pkg/b.py": `from pkg.a import Base

class Sub(Base):
    pass
`,
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	// A directory claiming an already-taken module name collides.
	clash := filepath.Join(root, "pkg", "a", "__init__.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(clash), 0o755))
	require.NoError(t, os.WriteFile(clash, []byte(""), 0o600))
	require.Error(t, b.Rebuild(m, clash))

	// The surviving entities are re-finalized and safe to render.
	assert.NotNil(t, m.Lookup("pkg.a.Base"))
	sub := m.Lookup("pkg.b.Sub")
	require.NotNil(t, sub)
	require.NotEmpty(t, sub.MRO)
	assert.Same(t, sub, sub.MRO[0])
}

func TestRebuildRemovedFileDropsModule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "class A:\n    pass\n",
	})

	b := newTestBuilder(t, root, BuilderOptions{})
	m, err := b.Build(context.Background())
	require.NoError(t, err)

	path := filepath.Join(root, "pkg", "a.py")
	require.NoError(t, os.Remove(path))
	require.NoError(t, b.Rebuild(m, path))

	assert.Nil(t, m.Module("pkg.a"))
	assert.Nil(t, m.Lookup("pkg.a.A"))
}

func TestSummaryLine(t *testing.T) {
	cases := []struct {
		doc  string
		want string
	}{
		{"", ""},
		{"One line only", "One line only"},
		{"First sentence. Second sentence.", "First sentence."},
		{"Version 1.2 of the API. More text.", "Version 1.2 of the API."},
		{"Paragraph one\ncontinues here\n\nParagraph two", "Paragraph one continues here"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, summaryLine(tc.doc), "doc=%q", tc.doc)
	}
}
