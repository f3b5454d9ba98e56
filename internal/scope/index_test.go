// # internal/scope/index_test.go
package scope

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docref/internal/model"
	"docref/internal/parser"
)

func buildModel(t *testing.T, files map[string]string) *model.Model {
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
	return m
}

func TestModuleScopeMergesChildrenAndImports(t *testing.T) {
	m := buildModel(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `class Base:
    pass

def helper():
    pass
`,
		"pkg/b.py": `from pkg.a import Base as B
import pkg.a

class Local:
    pass
`,
	})
	idx := NewIndex(m)

	mod := m.Module("pkg.b")
	require.NotNil(t, mod)
	scope := idx.ScopeOf(mod)

	require.Contains(t, scope, "B")
	assert.Equal(t, "pkg.a.Base", scope["B"].Name)
	require.Contains(t, scope, "pkg")
	assert.Equal(t, "pkg", scope["pkg"].Name)
	require.Contains(t, scope, "Local")
	assert.Equal(t, "pkg.b.Local", scope["Local"].Name)
}

func TestModuleScopeLastWriteWins(t *testing.T) {
	m := buildModel(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `class Thing:
    """From a."""
`,
		"pkg/early.py": `from pkg.a import Thing

class Thing:
    """Redefined locally after the import."""
`,
		"pkg/late.py": `class Thing:
    """Defined before the import."""

from pkg.a import Thing
`,
	})
	idx := NewIndex(m)

	early := idx.ScopeOf(m.Module("pkg.early"))
	require.Contains(t, early, "Thing")
	assert.Equal(t, "pkg.early.Thing", early["Thing"].Name)

	late := idx.ScopeOf(m.Module("pkg.late"))
	require.Contains(t, late, "Thing")
	assert.Equal(t, "pkg.a.Thing", late["Thing"].Name)
}

func TestModuleScopeWildcardImport(t *testing.T) {
	m := buildModel(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `__all__ = ["Exported"]

class Exported:
    pass

class Hidden:
    pass
`,
		"pkg/b.py": `from pkg.a import *
`,
		"pkg/c.py": "class Pub:\n    pass\n",
		"pkg/d.py": `from pkg.c import *
`,
	})
	idx := NewIndex(m)

	b := idx.ScopeOf(m.Module("pkg.b"))
	require.Contains(t, b, "Exported")
	assert.Equal(t, "pkg.a.Exported", b["Exported"].Name)
	assert.NotContains(t, b, "Hidden")

	// Without __all__, a wildcard import binds the public children.
	d := idx.ScopeOf(m.Module("pkg.d"))
	require.Contains(t, d, "Pub")
	assert.Equal(t, "pkg.c.Pub", d["Pub"].Name)
}

func TestClassScopeWalksMRO(t *testing.T) {
	m := buildModel(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `class Base:
    def run(self):
        pass

    def shared(self):
        """Base version."""
`,
		"pkg/b.py": `from pkg.a import Base

class Sub(Base):
    def shared(self):
        """Override."""
`,
	})
	idx := NewIndex(m)

	sub := m.Lookup("pkg.b.Sub")
	require.NotNil(t, sub)
	scope := idx.ScopeOf(sub)

	require.Contains(t, scope, "run")
	assert.Equal(t, "pkg.a.Base.run", scope["run"].Name)
	require.Contains(t, scope, "shared")
	assert.Equal(t, "pkg.b.Sub.shared", scope["shared"].Name, "own member shadows inherited")
}

func TestLookupClimbsEnclosingScopes(t *testing.T) {
	m := buildModel(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py": `import pkg

CONST = 1

class C:
    def method(self):
        pass
`,
	})
	idx := NewIndex(m)

	method := m.Lookup("pkg.a.C.method")
	require.NotNil(t, method)

	// Sibling in the class scope.
	got := idx.Lookup(method, "method")
	require.NotNil(t, got)
	assert.Equal(t, "pkg.a.C.method", got.Name)

	// Name from the enclosing module.
	got = idx.Lookup(method, "CONST")
	require.NotNil(t, got)
	assert.Equal(t, "pkg.a.CONST", got.Name)

	// Project root packages are always visible.
	got = idx.Lookup(method, "pkg")
	require.NotNil(t, got)
	assert.Equal(t, "pkg", got.Name)

	assert.Nil(t, idx.Lookup(method, "nonexistent"))
}

func TestResetInvalidatesCache(t *testing.T) {
	m := buildModel(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "class A:\n    pass\n",
	})
	idx := NewIndex(m)
	require.Contains(t, idx.ScopeOf(m.Module("pkg.a")), "A")

	m2 := buildModel(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "class B:\n    pass\n",
	})
	idx.Reset(m2)

	scope := idx.ScopeOf(m2.Module("pkg.a"))
	assert.NotContains(t, scope, "A")
	assert.Contains(t, scope, "B")
}
