// # internal/model/builder.go
package model

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"docref/internal/errors"
	"docref/internal/parser"
	"docref/internal/shared/observability"
)

// BuilderOptions carries the scan configuration.
type BuilderOptions struct {
	// ExcludePatterns are dotted-name globs applied to qualified names.
	ExcludePatterns []string
	// ExcludeDirs and ExcludeFiles are basename globs applied while scanning.
	ExcludeDirs  []string
	ExcludeFiles []string
}

// Builder constructs the source model from a set of root directories.
type Builder struct {
	parser    *parser.Parser
	roots     []string
	excludes  *ExcludeMatcher
	dirGlobs  []glob.Glob
	fileGlobs []glob.Glob
}

func NewBuilder(p *parser.Parser, roots []string, opts BuilderOptions) (*Builder, error) {
	excludes, err := NewExcludeMatcher(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		parser:   p,
		roots:    roots,
		excludes: excludes,
	}

	for _, pattern := range opts.ExcludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", pattern, err)
		}
		b.dirGlobs = append(b.dirGlobs, g)
	}
	for _, pattern := range opts.ExcludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", pattern, err)
		}
		b.fileGlobs = append(b.fileGlobs, g)
	}

	return b, nil
}

// Build scans all roots and constructs a complete model. Files that fail
// to parse are recorded as diagnostics and skipped; two files claiming
// the same module name abort the build.
func (b *Builder) Build(ctx context.Context) (*Model, error) {
	ctx, span := observability.Tracer.Start(ctx, "builder.Build")
	defer span.End()

	m := NewModel()

	files, err := b.scan()
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.addFile(m, f.root, f.path); err != nil {
			return nil, err
		}
	}

	b.finalize(m)
	return m, nil
}

// Rebuild re-parses a single file and replaces its module in the model.
// Base-class links and MRO sequences are recomputed for the whole model:
// structural changes conservatively invalidate all cross-module state.
func (b *Builder) Rebuild(m *Model, path string) error {
	root := b.rootFor(path)
	if root == "" {
		return errors.Newf(errors.CodeNotFound, "path %q is outside all configured roots", path)
	}

	if name, ok := m.byPath[path]; ok {
		m.removeModule(name)
	}

	if _, err := os.Stat(path); err != nil {
		// File deleted: removal already done above.
		b.finalize(m)
		return nil
	}

	// Finalize even on error so base links and MRO sequences never point
	// at removed entities when the caller keeps rendering.
	err := b.addFile(m, root, path)
	b.finalize(m)
	return err
}

type scanned struct {
	root string
	path string
}

func (b *Builder) scan() ([]scanned, error) {
	var files []scanned

	for _, root := range b.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && b.matchAny(b.dirGlobs, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".py" {
				return nil
			}
			if b.matchAny(b.fileGlobs, d.Name()) {
				return nil
			}
			files = append(files, scanned{root: root, path: path})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Deterministic order: parents sort before children, __init__.py first
	// within a directory, so package entities exist before their members.
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

func (b *Builder) matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (b *Builder) rootFor(path string) string {
	for _, root := range b.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(rel, "..") {
			return root
		}
	}
	return ""
}

func (b *Builder) addFile(m *Model, root, path string) error {
	fqn, isPkg := b.moduleName(root, path)
	if fqn == "" {
		return nil
	}
	if b.excludes.Match(fqn) {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		m.addDiagnostic(Diagnostic{
			File:     path,
			Message:  fmt.Sprintf("read failed: %v", err),
			Severity: SeverityError,
		})
		return nil
	}

	raw, err := b.parser.ParseFile(path, content)
	if err != nil {
		m.addDiagnostic(Diagnostic{
			File:     path,
			Message:  fmt.Sprintf("parse failed: %v", err),
			Severity: SeverityError,
		})
		return nil
	}

	return b.buildModule(m, fqn, isPkg, raw)
}

// moduleName converts a file path into a dotted module name, trimming
// leading directories that are not packages (no __init__.py).
func (b *Builder) moduleName(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}

	parts := strings.Split(rel, string(os.PathSeparator))

	packageStart := 0
	for i := 0; i < len(parts)-1; i++ {
		initPath := filepath.Join(root, filepath.Join(parts[:i+1]...), "__init__.py")
		if _, err := os.Stat(initPath); os.IsNotExist(err) {
			packageStart = i + 1
		} else {
			break
		}
	}
	parts = parts[packageStart:]

	parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], ".py")

	isPkg := false
	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
		isPkg = true
		if len(parts) == 0 {
			return "", false
		}
	}

	return strings.Join(parts, "."), isPkg
}

func (b *Builder) buildModule(m *Model, fqn string, isPkg bool, raw *parser.RawModule) error {
	// Reject a colliding module name before any entities are registered
	// so a failed add never leaves partial state behind.
	if existing, ok := m.modules[fqn]; ok && existing.Path != "" {
		return b.duplicateError(existing, &Entity{
			Name:     fqn,
			Location: parser.Location{File: raw.Path, Line: 1},
		})
	}

	kind := KindModule
	if isPkg {
		kind = KindPackage
	}

	segments := strings.Split(fqn, ".")
	mod := &Entity{
		Name:       fqn,
		ShortName:  segments[len(segments)-1],
		Kind:       kind,
		Docstring:  raw.Docstring,
		Exports:    raw.Exports,
		HasExports: raw.HasExports,
		Path:       raw.Path,
		Location:   parser.Location{File: raw.Path, Line: 1},
	}

	mod.Imports = b.buildImportBindings(fqn, isPkg, raw.Imports)

	exports := make(map[string]bool, len(raw.Exports))
	for _, name := range raw.Exports {
		exports[name] = true
	}

	if err := b.buildChildren(m, mod, raw.Defs, exports, mod); err != nil {
		return err
	}

	return b.registerModule(m, mod)
}

func (b *Builder) buildChildren(m *Model, parent *Entity, defs []parser.RawDef, exports map[string]bool, mod *Entity) error {
	classLevel := parent.Kind == KindClass

	for i := range defs {
		def := &defs[i]

		if strings.HasPrefix(def.Name, "_") {
			// Module-level underscore names can be re-exported via __all__;
			// class members cannot.
			if classLevel || !exports[def.Name] {
				continue
			}
		}

		fqn := parent.Name + "." + def.Name
		if b.excludes.Match(fqn) {
			continue
		}

		// Redefinition within one parent is legal Python: property
		// accessor stacks fold into the property entity, anything else
		// (overloads, conditional defs) is last-write-wins.
		if prev := parent.Child(def.Name); prev != nil {
			if prev.Kind == KindProperty && isPropertyAccessor(def.Decorators) {
				if prev.Docstring == "" {
					prev.Docstring = def.Docstring
				}
				continue
			}
			b.dropEntity(m, parent, prev)
		}

		child := &Entity{
			Name:       fqn,
			ShortName:  def.Name,
			Kind:       entityKind(def, classLevel),
			Module:     mod,
			Parent:     parent,
			Location:   def.Location,
			EndLine:    def.EndLine,
			Docstring:  def.Docstring,
			Decorators: def.Decorators,
			IsAsync:    def.IsAsync,
			BaseNames:  def.Bases,
		}
		if classLevel {
			child.Class = parent
		}
		if def.Annotation != "" {
			child.Annotation = &Annotation{Raw: def.Annotation}
		}
		for _, p := range def.Params {
			param := Param{Name: p.Name, Default: p.Default}
			if p.Annotation != "" {
				param.Annotation = &Annotation{Raw: p.Annotation}
			}
			child.Params = append(child.Params, param)
		}

		if err := b.registerEntity(m, child); err != nil {
			return err
		}
		parent.Children = append(parent.Children, child)

		if len(def.Children) > 0 {
			if err := b.buildChildren(m, child, def.Children, exports, mod); err != nil {
				return err
			}
		}
	}

	return nil
}

func entityKind(def *parser.RawDef, classLevel bool) Kind {
	switch def.Kind {
	case parser.RawClass:
		return KindClass
	case parser.RawFunction:
		if !classLevel {
			return KindFunction
		}
		for _, d := range def.Decorators {
			if d == "property" || d == "cached_property" || d == "functools.cached_property" {
				return KindProperty
			}
		}
		if isPropertyAccessor(def.Decorators) {
			return KindProperty
		}
		return KindMethod
	default:
		return KindAttribute
	}
}

func isPropertyAccessor(decorators []string) bool {
	for _, d := range decorators {
		if strings.HasSuffix(d, ".setter") || strings.HasSuffix(d, ".getter") || strings.HasSuffix(d, ".deleter") {
			return true
		}
	}
	return false
}

// dropEntity removes a child and its descendants from the model indexes
// and from the parent's child list.
func (b *Builder) dropEntity(m *Model, parent, e *Entity) {
	var drop func(e *Entity)
	drop = func(e *Entity) {
		delete(m.entities, e.Name)
		for _, c := range e.Children {
			drop(c)
		}
	}
	drop(e)
	for i, c := range parent.Children {
		if c == e {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			break
		}
	}
}

func (b *Builder) buildImportBindings(fqn string, isPkg bool, imports []parser.RawImport) []ImportBinding {
	var bindings []ImportBinding

	for _, imp := range imports {
		switch {
		case imp.RelativeLevel == 0 && len(imp.Items) == 0 && !imp.Wildcard:
			// "import a.b" binds both the top-level name and the full path;
			// "import a.b as x" binds only the alias.
			if imp.Alias != "" {
				bindings = append(bindings, ImportBinding{Name: imp.Alias, Target: imp.Module, Location: imp.Location})
				continue
			}
			first := imp.Module
			if idx := strings.IndexByte(first, '.'); idx >= 0 {
				first = first[:idx]
				bindings = append(bindings, ImportBinding{Name: imp.Module, Target: imp.Module, Location: imp.Location})
			}
			bindings = append(bindings, ImportBinding{Name: first, Target: first, Location: imp.Location})

		default:
			base := resolveRelativeModule(fqn, isPkg, imp.RelativeLevel, imp.Module)
			if base == "" {
				continue
			}
			if imp.Wildcard {
				bindings = append(bindings, ImportBinding{Name: "*", Target: base, Location: imp.Location})
				continue
			}
			for _, item := range imp.Items {
				visible := item.Name
				if item.Alias != "" {
					visible = item.Alias
				}
				bindings = append(bindings, ImportBinding{
					Name:     visible,
					Target:   base + "." + item.Name,
					Location: imp.Location,
				})
			}
		}
	}

	return bindings
}

// resolveRelativeModule turns a relative import into an absolute dotted
// module name, e.g. level 1 inside "pkg.c" refers to "pkg".
func resolveRelativeModule(moduleFQN string, isPkg bool, level int, rest string) string {
	if level == 0 {
		return rest
	}

	parts := strings.Split(moduleFQN, ".")
	if !isPkg {
		parts = parts[:len(parts)-1]
	}
	drop := level - 1
	if drop >= len(parts) {
		return rest
	}
	parts = parts[:len(parts)-drop]

	base := strings.Join(parts, ".")
	if rest == "" {
		return base
	}
	if base == "" {
		return rest
	}
	return base + "." + rest
}

func (b *Builder) registerModule(m *Model, mod *Entity) error {
	if existing, ok := m.modules[mod.Name]; ok {
		// A placeholder created for a missing __init__.py may be replaced
		// by the real package module; its already-registered submodules
		// move over to the real entity.
		if existing.Path != "" {
			return b.duplicateError(existing, mod)
		}
		for _, c := range existing.Children {
			c.Parent = mod
			mod.Children = append(mod.Children, c)
		}
		if existing.Parent != nil {
			for i, c := range existing.Parent.Children {
				if c == existing {
					existing.Parent.Children = append(existing.Parent.Children[:i], existing.Parent.Children[i+1:]...)
					break
				}
			}
		} else {
			// Only a true top-level placeholder owns a roots entry; an
			// unrelated top-level module may share the short name.
			delete(m.roots, existing.ShortName)
		}
		delete(m.entities, existing.Name)
		delete(m.modules, existing.Name)
	}
	if err := b.registerEntity(m, mod); err != nil {
		return err
	}

	m.modules[mod.Name] = mod
	m.byPath[mod.Path] = mod.Name

	if idx := strings.LastIndexByte(mod.Name, '.'); idx >= 0 {
		parentName := mod.Name[:idx]
		parent := m.modules[parentName]
		if parent == nil {
			parent = b.placeholderPackage(m, parentName)
		}
		mod.Parent = parent
		parent.Children = append(parent.Children, mod)
	} else {
		m.roots[mod.ShortName] = mod
	}

	return nil
}

// placeholderPackage creates a synthetic package entity for a directory
// without __init__.py that still contains deeper packages.
func (b *Builder) placeholderPackage(m *Model, fqn string) *Entity {
	segments := strings.Split(fqn, ".")
	pkg := &Entity{
		Name:      fqn,
		ShortName: segments[len(segments)-1],
		Kind:      KindPackage,
	}
	m.entities[fqn] = pkg
	m.modules[fqn] = pkg
	if len(segments) > 1 {
		parentName := strings.Join(segments[:len(segments)-1], ".")
		parent := m.modules[parentName]
		if parent == nil {
			parent = b.placeholderPackage(m, parentName)
		}
		pkg.Parent = parent
		parent.Children = append(parent.Children, pkg)
	} else {
		m.roots[pkg.ShortName] = pkg
	}
	return pkg
}

func (b *Builder) registerEntity(m *Model, e *Entity) error {
	if existing, ok := m.entities[e.Name]; ok {
		return b.duplicateError(existing, e)
	}
	m.entities[e.Name] = e
	return nil
}

func (b *Builder) duplicateError(a, c *Entity) error {
	return errors.Newf(errors.CodeDuplicateName,
		"duplicate qualified name %q: declared at %s:%d and %s:%d",
		a.Name, a.Location.File, a.Location.Line, c.Location.File, c.Location.Line).
		WithContext(errors.CtxName, a.Name)
}

// finalize resolves base-class links and attaches the precomputed MRO
// sequence to every class. It runs after the full model exists so forward
// and cross-module references never depend on file order.
func (b *Builder) finalize(m *Model) {
	var classes []*Entity
	var collect func(e *Entity)
	collect = func(e *Entity) {
		if e.Kind == KindClass {
			classes = append(classes, e)
		}
		for _, c := range e.Children {
			collect(c)
		}
	}
	for _, root := range m.Roots() {
		collect(root)
	}

	for _, c := range classes {
		c.Bases = c.Bases[:0]
		for _, baseName := range c.BaseNames {
			base := resolveInModuleScope(m, c.OwningModule(), baseName)
			if base != nil && base.Kind == KindClass {
				c.Bases = append(c.Bases, base)
			} else {
				// External or unresolvable base: kept out of MRO.
				c.Bases = append(c.Bases, nil)
			}
		}
	}

	for _, c := range classes {
		mro, err := linearizeMRO(c)
		if err != nil {
			m.addDiagnostic(Diagnostic{
				File:     c.Location.File,
				Line:     c.Location.Line,
				Message:  fmt.Sprintf("class %s: %v; falling back to depth-first order", c.Name, err),
				Severity: SeverityWarning,
			})
			mro = fallbackMRO(c)
		}
		c.MRO = mro
	}

	observability.ModelEntities.Set(float64(m.EntityCount()))
	observability.ModelModules.Set(float64(m.ModuleCount()))
}

// resolveInModuleScope resolves a dotted name against a module's local
// namespace: its own children, import bindings (later declarations win),
// then the project's top-level packages. Used for base-class linking; the
// full scope-chain rules live in the scope package.
func resolveInModuleScope(m *Model, mod *Entity, dotted string) *Entity {
	if mod == nil || dotted == "" {
		return nil
	}

	segments := strings.Split(dotted, ".")

	var cur *Entity
	target := ""
	for _, binding := range mod.Imports {
		if binding.Name == segments[0] {
			target = binding.Target
		}
	}
	switch {
	case target != "":
		cur = m.Lookup(target)
	case mod.Child(segments[0]) != nil:
		cur = mod.Child(segments[0])
	default:
		cur = m.roots[segments[0]]
	}

	for _, seg := range segments[1:] {
		if cur == nil {
			return nil
		}
		cur = cur.Child(seg)
	}
	return cur
}
