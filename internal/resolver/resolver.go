// # internal/resolver/resolver.go
package resolver

import (
	"regexp"
	"strings"
	"sync/atomic"

	"docref/internal/model"
	"docref/internal/scope"
	"docref/internal/shared/observability"
)

type Kind int

const (
	KindUnresolved Kind = iota
	KindResolved
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindResolved:
		return "resolved"
	case KindExternal:
		return "external"
	default:
		return "unresolved"
	}
}

// Reference is the outcome of resolving a dotted name from a context.
// FQN carries the expanded dotted name for resolved and external
// references; Target is set only for resolved ones.
type Reference struct {
	Kind   Kind
	Raw    string
	FQN    string
	Target *model.Entity
}

// Resolver maps dotted names written in docstrings and annotations to
// entities. Resolution never fails hard: names that cannot be linked
// come back as external or unresolved references.
type Resolver struct {
	scopes *scope.Index

	resolved   atomic.Uint64
	external   atomic.Uint64
	unresolved atomic.Uint64
}

func New(scopes *scope.Index) *Resolver {
	return &Resolver{scopes: scopes}
}

// Stats returns how many resolutions of each kind happened since the
// last reset.
func (r *Resolver) Stats() (resolved, external, unresolved uint64) {
	return r.resolved.Load(), r.external.Load(), r.unresolved.Load()
}

func (r *Resolver) ResetStats() {
	r.resolved.Store(0)
	r.external.Store(0)
	r.unresolved.Store(0)
}

// Resolve resolves a dotted name in the scope of ctx. The same inputs
// always produce the same reference.
func (r *Resolver) Resolve(ctx *model.Entity, name string) Reference {
	ref := r.resolve(ctx, name)
	switch ref.Kind {
	case KindResolved:
		r.resolved.Add(1)
	case KindExternal:
		r.external.Add(1)
	default:
		r.unresolved.Add(1)
	}
	observability.ResolutionsTotal.WithLabelValues(ref.Kind.String()).Inc()
	return ref
}

func (r *Resolver) resolve(ctx *model.Entity, name string) Reference {
	raw := name
	name = strings.TrimSpace(name)
	if name == "" {
		// Nothing to look up, and nothing project-internal to link.
		return Reference{Kind: KindExternal, Raw: raw}
	}

	segments := strings.Split(name, ".")
	for _, seg := range segments {
		if !isIdentifier(seg) {
			return Reference{Kind: KindUnresolved, Raw: raw}
		}
	}

	if len(segments) == 1 && IsBuiltin(name) {
		return Reference{Kind: KindExternal, Raw: raw, FQN: name}
	}

	if head := r.scopes.Lookup(ctx, segments[0]); head != nil {
		if target := r.walk(head, segments[1:]); target != nil {
			return Reference{Kind: KindResolved, Raw: raw, FQN: target.Name, Target: target}
		}
	}

	m := r.scopes.Model()

	// An import of something outside the project makes the whole dotted
	// prefix external, including through aliases: np.ndarray expands to
	// numpy.ndarray.
	if binding := externalBinding(ctx, segments[0]); binding != nil {
		expanded := binding.Target
		if len(segments) > 1 {
			expanded += "." + strings.Join(segments[1:], ".")
		}
		if target := m.Lookup(expanded); target != nil {
			return Reference{Kind: KindResolved, Raw: raw, FQN: target.Name, Target: target}
		}
		if m.HasTopLevelPrefix(strings.SplitN(binding.Target, ".", 2)[0]) {
			// In-project prefix with no entity behind it: the target was
			// excluded from the model, so it must not link anywhere.
			return Reference{Kind: KindUnresolved, Raw: raw}
		}
		return Reference{Kind: KindExternal, Raw: raw, FQN: expanded}
	}

	if IsStdlibModule(name) {
		return Reference{Kind: KindExternal, Raw: raw, FQN: name}
	}

	return Reference{Kind: KindUnresolved, Raw: raw}
}

// walk follows the remaining segments through nested namespaces. Module
// segments see the module's full namespace including imports; class
// segments see inherited members in MRO order.
func (r *Resolver) walk(head *model.Entity, rest []string) *model.Entity {
	cur := head
	for _, seg := range rest {
		var next *model.Entity
		if s := r.scopes.ScopeOf(cur); s != nil {
			next = s[seg]
		} else {
			next = cur.Child(seg)
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// externalBinding finds the last import binding for a visible name in
// the context's module whose target has no entity in the model.
func externalBinding(ctx *model.Entity, visible string) *model.ImportBinding {
	if ctx == nil {
		return nil
	}
	mod := ctx.OwningModule()
	if mod == nil {
		return nil
	}
	var found *model.ImportBinding
	for i := range mod.Imports {
		if mod.Imports[i].Name == visible {
			found = &mod.Imports[i]
		}
	}
	return found
}

var dottedName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isIdentifier(s string) bool {
	return dottedName.MatchString(s)
}

// ResolveAnnotations fills the deferred target slot of every plain
// dotted-name annotation in the model. Compound type expressions keep a
// nil target; their name tokens are resolved individually at render
// time.
func (r *Resolver) ResolveAnnotations() {
	m := r.scopes.Model()
	for _, mod := range m.Modules() {
		resolveAnnotationsIn(r, mod)
	}
}

func resolveAnnotationsIn(r *Resolver, e *model.Entity) {
	resolveAnnotation(r, e, e.Annotation)
	for _, p := range e.Params {
		resolveAnnotation(r, e, p.Annotation)
	}
	for _, child := range e.Children {
		resolveAnnotationsIn(r, child)
	}
}

func resolveAnnotation(r *Resolver, ctx *model.Entity, a *model.Annotation) {
	if a == nil || a.Target != nil {
		return
	}
	name := strings.TrimSpace(a.Raw)
	if !isDottedName(name) {
		return
	}
	if ref := r.resolve(ctx, name); ref.Kind == KindResolved {
		a.Target = ref.Target
	}
}

func isDottedName(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if !isIdentifier(seg) {
			return false
		}
	}
	return true
}
