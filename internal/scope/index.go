// # internal/scope/index.go
package scope

import (
	"sort"
	"sync"

	"docref/internal/model"
)

// Index computes, for every namespace-bearing entity, the mapping from
// locally visible short names to entities. It is a pure function of the
// source model; the per-entity cache is a performance detail invalidated
// wholesale whenever the model changes.
type Index struct {
	mu    sync.RWMutex
	model *model.Model
	cache map[*model.Entity]map[string]*model.Entity
}

func NewIndex(m *model.Model) *Index {
	return &Index{
		model: m,
		cache: make(map[*model.Entity]map[string]*model.Entity),
	}
}

// Reset swaps the model and drops all cached scopes. Called after full or
// incremental rebuilds; conservative module-granularity invalidation.
func (i *Index) Reset(m *model.Model) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.model = m
	i.cache = make(map[*model.Entity]map[string]*model.Entity)
}

func (i *Index) Model() *model.Model {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.model
}

// Lookup resolves a short name in the scope of the given context entity:
// class scope (with inherited members in MRO order), then the enclosing
// module's namespace, then the project's top-level packages. Returns nil
// when the name is not visible.
func (i *Index) Lookup(ctx *model.Entity, shortName string) *model.Entity {
	if ctx == nil || shortName == "" {
		return nil
	}

	for ns := nearestNamespace(ctx); ns != nil; ns = nearestNamespace(ns.Parent) {
		if target, ok := i.scopeOf(ns)[shortName]; ok && target != nil {
			return target
		}
	}

	i.mu.RLock()
	m := i.model
	i.mu.RUnlock()
	return m.Root(shortName)
}

// ScopeOf returns the resolved (name -> entity) bindings visible without
// qualification inside a module or class.
func (i *Index) ScopeOf(ns *model.Entity) map[string]*model.Entity {
	return i.scopeOf(ns)
}

func nearestNamespace(e *model.Entity) *model.Entity {
	for cur := e; cur != nil; cur = cur.Parent {
		if cur.IsNamespace() {
			return cur
		}
	}
	return nil
}

func (i *Index) scopeOf(ns *model.Entity) map[string]*model.Entity {
	if ns == nil {
		return nil
	}

	i.mu.RLock()
	cached, ok := i.cache[ns]
	i.mu.RUnlock()
	if ok {
		return cached
	}

	var scope map[string]*model.Entity
	switch ns.Kind {
	case model.KindClass:
		scope = i.classScope(ns)
	case model.KindModule, model.KindPackage:
		scope = i.moduleScope(ns)
	default:
		return nil
	}

	i.mu.Lock()
	i.cache[ns] = scope
	i.mu.Unlock()
	return scope
}

// moduleScope overlays the module's top-level children with its import
// bindings. Source order determines the final binding per name:
// last-write-wins, so an import shadows a same-named local only when it
// is declared later.
func (i *Index) moduleScope(mod *model.Entity) map[string]*model.Entity {
	i.mu.RLock()
	m := i.model
	i.mu.RUnlock()

	type binding struct {
		name   string
		target *model.Entity
		line   int
	}
	var bindings []binding

	for _, child := range mod.Children {
		bindings = append(bindings, binding{
			name:   child.ShortName,
			target: child,
			line:   child.Location.Line,
		})
	}

	for _, imp := range mod.Imports {
		if imp.Name == "*" {
			for _, name := range exportedNames(m.Module(imp.Target)) {
				if target := m.Lookup(imp.Target + "." + name); target != nil {
					bindings = append(bindings, binding{name: name, target: target, line: imp.Location.Line})
				}
			}
			continue
		}
		target := m.Lookup(imp.Target)
		if target == nil {
			// Import of something outside the project: no entity binding;
			// the resolver classifies such prefixes as external.
			continue
		}
		bindings = append(bindings, binding{name: imp.Name, target: target, line: imp.Location.Line})
	}

	sort.SliceStable(bindings, func(a, b int) bool { return bindings[a].line < bindings[b].line })

	scope := make(map[string]*model.Entity, len(bindings))
	for _, b := range bindings {
		scope[b.name] = b.target
	}
	return scope
}

// classScope is the union of the class's own members and, walking the
// precomputed MRO, each ancestor's members not already shadowed. The
// first ancestor in MRO order wins ties.
func (i *Index) classScope(c *model.Entity) map[string]*model.Entity {
	scope := make(map[string]*model.Entity)

	for _, ancestor := range c.MRO {
		for _, member := range ancestor.Children {
			if _, shadowed := scope[member.ShortName]; !shadowed {
				scope[member.ShortName] = member
			}
		}
	}
	return scope
}

// exportedNames lists the names a wildcard import would bind: the
// module's __all__ when present, otherwise its public children.
func exportedNames(mod *model.Entity) []string {
	if mod == nil {
		return nil
	}
	if mod.HasExports {
		return mod.Exports
	}
	var out []string
	for _, child := range mod.Children {
		out = append(out, child.ShortName)
	}
	return out
}
