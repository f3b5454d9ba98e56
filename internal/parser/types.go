// # internal/parser/types.go
package parser

import (
	"time"
)

// RawModule is the per-file extraction result before model construction.
// Declaration order is preserved everywhere.
type RawModule struct {
	Path       string
	Docstring  string
	Imports    []RawImport
	Defs       []RawDef
	Exports    []string // names listed in __all__
	HasExports bool     // whether an __all__ assignment was present
	ParsedAt   time.Time
}

type RawImport struct {
	// Module is the imported module path as written ("pkg.a"); empty for
	// a bare relative import ("from . import x").
	Module        string
	Alias         string
	Items         []RawImportItem // for "from X import Y as Z, W"
	RelativeLevel int             // number of leading dots, 0 for absolute
	Wildcard      bool            // "from X import *"
	Location      Location
}

type RawImportItem struct {
	Name  string
	Alias string
}

type RawDef struct {
	Name        string
	Kind        RawKind
	Docstring   string
	Annotation  string // return annotation (functions) or declared type (attributes)
	Params      []RawParam
	Bases       []string // raw base-class expressions, declaration order
	Decorators  []string
	IsAsync     bool
	Location    Location
	EndLine     int
	Children    []RawDef // class members and nested definitions
	ValueSource string   // right-hand side text for attributes
}

type RawParam struct {
	Name       string
	Annotation string
	Default    string
}

type RawKind int

const (
	RawClass RawKind = iota
	RawFunction
	RawAttribute
)

func (k RawKind) String() string {
	switch k {
	case RawClass:
		return "class"
	case RawFunction:
		return "function"
	case RawAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

type Location struct {
	File   string
	Line   int
	Column int
}
