// # internal/model/model.go
package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Model is the normalized in-memory representation of one build: a forest
// of entities rooted at top-level packages/modules. It is constructed to
// completion before any resolution occurs and replaced wholesale (or
// module-by-module) on rebuilds.
type Model struct {
	BuildID string
	BuiltAt time.Time

	roots    map[string]*Entity // top-level package/module name -> entity
	entities map[string]*Entity // fully qualified name -> entity
	modules  map[string]*Entity // module fully qualified name -> entity
	byPath   map[string]string  // source file path -> module fully qualified name

	Diagnostics []Diagnostic
}

func NewModel() *Model {
	return &Model{
		BuildID:  uuid.NewString(),
		BuiltAt:  time.Now().UTC(),
		roots:    make(map[string]*Entity),
		entities: make(map[string]*Entity),
		modules:  make(map[string]*Entity),
		byPath:   make(map[string]string),
	}
}

// Lookup returns the entity with the given fully qualified name.
func (m *Model) Lookup(qualifiedName string) *Entity {
	return m.entities[qualifiedName]
}

// Module returns the module or package entity with the given name.
func (m *Model) Module(qualifiedName string) *Entity {
	return m.modules[qualifiedName]
}

// ModuleForPath returns the module entity built from the given file.
func (m *Model) ModuleForPath(path string) *Entity {
	if name, ok := m.byPath[path]; ok {
		return m.modules[name]
	}
	return nil
}

// Root returns the top-level package/module with the given short name.
func (m *Model) Root(shortName string) *Entity {
	return m.roots[shortName]
}

// Roots returns all top-level entities sorted by name.
func (m *Model) Roots() []*Entity {
	names := make([]string, 0, len(m.roots))
	for name := range m.roots {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Entity, 0, len(names))
	for _, name := range names {
		out = append(out, m.roots[name])
	}
	return out
}

// Modules returns all module/package entities sorted by qualified name.
func (m *Model) Modules() []*Entity {
	names := make([]string, 0, len(m.modules))
	for name := range m.modules {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Entity, 0, len(names))
	for _, name := range names {
		out = append(out, m.modules[name])
	}
	return out
}

func (m *Model) EntityCount() int {
	return len(m.entities)
}

func (m *Model) ModuleCount() int {
	return len(m.modules)
}

// HasTopLevelPrefix reports whether the first dotted segment of name is a
// top-level package/module of the project.
func (m *Model) HasTopLevelPrefix(name string) bool {
	first := name
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		first = name[:idx]
	}
	_, ok := m.roots[first]
	return ok
}

// removeModule drops a module's own members from the indexes before the
// rebuilt module is re-registered. Submodules are untouched: a package
// with submodules is demoted to a placeholder (empty Path) so they keep
// a parent until the real package entity returns.
func (m *Model) removeModule(name string) {
	mod, ok := m.modules[name]
	if !ok {
		return
	}

	var drop func(e *Entity)
	drop = func(e *Entity) {
		delete(m.entities, e.Name)
		for _, c := range e.Children {
			drop(c)
		}
	}

	var submods []*Entity
	for _, c := range mod.Children {
		if c.Kind == KindModule || c.Kind == KindPackage {
			submods = append(submods, c)
		} else {
			drop(c)
		}
	}

	delete(m.byPath, mod.Path)

	if len(submods) > 0 {
		mod.Kind = KindPackage
		mod.Children = submods
		mod.Docstring = ""
		mod.Imports = nil
		mod.Exports = nil
		mod.HasExports = false
		mod.Path = ""
		return
	}

	delete(m.entities, mod.Name)
	delete(m.modules, name)
	if mod.Parent == nil {
		delete(m.roots, mod.ShortName)
	} else {
		for i, c := range mod.Parent.Children {
			if c == mod {
				mod.Parent.Children = append(mod.Parent.Children[:i], mod.Parent.Children[i+1:]...)
				break
			}
		}
	}
}
