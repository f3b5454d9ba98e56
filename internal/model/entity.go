// # internal/model/entity.go
package model

import (
	"docref/internal/parser"
)

type Kind int

const (
	KindPackage Kind = iota
	KindModule
	KindClass
	KindFunction
	KindMethod
	KindProperty
	KindAttribute
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// Entity is a named, documented unit of code. The fully qualified name is
// unique within a build; children's qualified names are prefixed by the
// parent's qualified name plus ".".
type Entity struct {
	Name      string // fully qualified dotted name
	ShortName string
	Kind      Kind

	Module *Entity // owning module (nil for modules/packages themselves)
	Class  *Entity // owning class for members
	Parent *Entity

	Location parser.Location
	EndLine  int

	Docstring  string
	Annotation *Annotation // return type or declared attribute type
	Params     []Param
	Decorators []string
	IsAsync    bool

	Children []*Entity // ordered by source position

	// Class-only fields.
	BaseNames []string  // raw base expressions, declaration order
	Bases     []*Entity // project-internal bases resolved in the second pass
	MRO       []*Entity // precomputed linearization, self first

	// Module-only fields.
	Imports    []ImportBinding
	Exports    []string
	HasExports bool
	Path       string // source file
}

// Annotation is a raw type expression with a deferred resolution slot,
// filled after the full model exists.
type Annotation struct {
	Raw    string
	Target *Entity // nil when external or unresolved
}

type Param struct {
	Name       string
	Annotation *Annotation
	Default    string
}

// ImportBinding maps a short or aliased name visible in a module's
// namespace to the fully qualified dotted name it denotes. The target may
// point outside the project; classification happens at resolution time.
type ImportBinding struct {
	Name     string // visible name, "*" for wildcard imports
	Target   string // fully qualified dotted target
	Location parser.Location
}

// Child returns the direct child with the given short name, or nil.
func (e *Entity) Child(shortName string) *Entity {
	for _, c := range e.Children {
		if c.ShortName == shortName {
			return c
		}
	}
	return nil
}

// IsNamespace reports whether the entity carries a scope of its own.
func (e *Entity) IsNamespace() bool {
	switch e.Kind {
	case KindPackage, KindModule, KindClass:
		return true
	}
	return false
}

// OwningModule returns the module entity the entity belongs to. Modules
// and packages return themselves.
func (e *Entity) OwningModule() *Entity {
	if e.Kind == KindModule || e.Kind == KindPackage {
		return e
	}
	return e.Module
}

// Summary returns the first docstring line up to the first blank line or
// sentence terminator, used for table-of-contents entries.
func (e *Entity) Summary() string {
	return summaryLine(e.Docstring)
}
