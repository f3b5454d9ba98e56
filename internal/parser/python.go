// # internal/parser/python.go
package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor turns a parsed python syntax tree into a RawModule.
// Only module-level and class-level statements are inspected; function
// bodies are opaque apart from their docstring.
type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*RawModule, error) {
	ctx := &ExtractionContext{Source: source, Path: filePath}

	mod := &RawModule{
		Path:     filePath,
		ParsedAt: time.Now(),
	}

	mod.Docstring = e.leadingDocstring(ctx, root)
	mod.Defs = e.extractStatements(ctx, root, mod, false)

	return mod, nil
}

// extractStatements walks the direct statements of a module or class body
// in source order. When mod is non-nil and classLevel is false, imports and
// __all__ assignments are attached to it.
func (e *PythonExtractor) extractStatements(ctx *ExtractionContext, body *sitter.Node, mod *RawModule, classLevel bool) []RawDef {
	var defs []RawDef

	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)

		switch stmt.Kind() {
		case "import_statement":
			if mod != nil && !classLevel {
				e.extractImport(ctx, stmt, mod)
			}

		case "import_from_statement":
			if mod != nil && !classLevel {
				e.extractFromImport(ctx, stmt, mod)
			}

		case "decorated_definition":
			decorators := e.extractDecorators(ctx, stmt)
			if def := stmt.ChildByFieldName("definition"); def != nil {
				if d, ok := e.extractDefinition(ctx, def, decorators, classLevel); ok {
					defs = append(defs, d)
				}
			}

		case "function_definition", "class_definition":
			if d, ok := e.extractDefinition(ctx, stmt, nil, classLevel); ok {
				defs = append(defs, d)
			}

		case "expression_statement":
			if d, ok := e.extractAssignment(ctx, stmt, mod, classLevel); ok {
				// An attribute may carry a docstring as the next statement.
				if doc := e.followingDocstring(ctx, body, i); doc != "" {
					d.Docstring = doc
				}
				defs = append(defs, d)
			}
		}
	}

	return defs
}

func (e *PythonExtractor) extractDefinition(ctx *ExtractionContext, node *sitter.Node, decorators []string, classLevel bool) (RawDef, bool) {
	switch node.Kind() {
	case "function_definition":
		return e.extractFunction(ctx, node, decorators), true
	case "class_definition":
		return e.extractClass(ctx, node, decorators), true
	}
	return RawDef{}, false
}

func (e *PythonExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node, decorators []string) RawDef {
	def := RawDef{
		Name:       ctx.Text(node.ChildByFieldName("name")),
		Kind:       RawFunction,
		Decorators: decorators,
		Location:   ctx.Location(node),
		EndLine:    int(node.EndPosition().Row) + 1,
	}

	if first := node.Child(0); first != nil && first.Kind() == "async" {
		def.IsAsync = true
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		def.Params = e.extractParams(ctx, params)
	}

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		def.Annotation = ctx.Text(ret)
	}

	if body := node.ChildByFieldName("body"); body != nil {
		def.Docstring = e.leadingDocstring(ctx, body)
	}

	return def
}

func (e *PythonExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node, decorators []string) RawDef {
	def := RawDef{
		Name:       ctx.Text(node.ChildByFieldName("name")),
		Kind:       RawClass,
		Decorators: decorators,
		Location:   ctx.Location(node),
		EndLine:    int(node.EndPosition().Row) + 1,
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.ChildCount(); i++ {
			arg := supers.Child(i)
			switch arg.Kind() {
			case "identifier", "attribute", "dotted_name", "subscript":
				def.Bases = append(def.Bases, ctx.Text(arg))
			case "keyword_argument":
				// metaclass=... and friends are not base classes
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		def.Docstring = e.leadingDocstring(ctx, body)
		def.Children = e.extractStatements(ctx, body, nil, true)
	}

	return def
}

func (e *PythonExtractor) extractParams(ctx *ExtractionContext, params *sitter.Node) []RawParam {
	var out []RawParam

	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		switch p.Kind() {
		case "identifier":
			out = append(out, RawParam{Name: ctx.Text(p)})

		case "typed_parameter":
			param := RawParam{}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Annotation = ctx.Text(t)
			}
			for j := uint(0); j < p.ChildCount(); j++ {
				if c := p.Child(j); c.Kind() == "identifier" {
					param.Name = ctx.Text(c)
					break
				}
			}
			out = append(out, param)

		case "default_parameter", "typed_default_parameter":
			param := RawParam{}
			if n := p.ChildByFieldName("name"); n != nil {
				param.Name = ctx.Text(n)
			}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Annotation = ctx.Text(t)
			}
			if v := p.ChildByFieldName("value"); v != nil {
				param.Default = ctx.Text(v)
			}
			out = append(out, param)

		case "list_splat_pattern", "dictionary_splat_pattern":
			out = append(out, RawParam{Name: ctx.Text(p)})
		}
	}

	return out
}

func (e *PythonExtractor) extractAssignment(ctx *ExtractionContext, stmt *sitter.Node, mod *RawModule, classLevel bool) (RawDef, bool) {
	var assign *sitter.Node
	for i := uint(0); i < stmt.ChildCount(); i++ {
		if c := stmt.Child(i); c.Kind() == "assignment" {
			assign = c
			break
		}
	}
	if assign == nil {
		return RawDef{}, false
	}

	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return RawDef{}, false
	}
	name := ctx.Text(left)

	right := assign.ChildByFieldName("right")

	if name == "__all__" && mod != nil && !classLevel {
		mod.Exports = e.extractExportList(ctx, right)
		mod.HasExports = true
		return RawDef{}, false
	}

	def := RawDef{
		Name:     name,
		Kind:     RawAttribute,
		Location: ctx.Location(assign),
		EndLine:  int(assign.EndPosition().Row) + 1,
	}
	if t := assign.ChildByFieldName("type"); t != nil {
		def.Annotation = ctx.Text(t)
	}
	if right != nil {
		def.ValueSource = ctx.Text(right)
	}

	return def, true
}

func (e *PythonExtractor) extractExportList(ctx *ExtractionContext, right *sitter.Node) []string {
	if right == nil {
		return nil
	}
	if right.Kind() != "list" && right.Kind() != "tuple" {
		return nil
	}
	var names []string
	for i := uint(0); i < right.ChildCount(); i++ {
		if c := right.Child(i); c.Kind() == "string" {
			if s := ctx.StringLiteral(c); s != "" {
				names = append(names, s)
			}
		}
	}
	return names
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node, mod *RawModule) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name", "identifier":
			mod.Imports = append(mod.Imports, RawImport{
				Module:   ctx.Text(child),
				Location: ctx.Location(child),
			})

		case "aliased_import":
			imp := RawImport{Location: ctx.Location(child)}
			if n := child.ChildByFieldName("name"); n != nil {
				imp.Module = ctx.Text(n)
			}
			if a := child.ChildByFieldName("alias"); a != nil {
				imp.Alias = ctx.Text(a)
			}
			mod.Imports = append(mod.Imports, imp)
		}
	}
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node, mod *RawModule) {
	imp := RawImport{Location: ctx.Location(node)}

	if modName := node.ChildByFieldName("module_name"); modName != nil {
		switch modName.Kind() {
		case "dotted_name", "identifier":
			imp.Module = ctx.Text(modName)
		case "relative_import":
			text := ctx.Text(modName)
			imp.RelativeLevel = len(text) - len(strings.TrimLeft(text, "."))
			imp.Module = strings.TrimLeft(text, ".")
		}
	}

	seenImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		if child.Kind() == "import" {
			seenImport = true
			continue
		}
		if !seenImport {
			continue
		}

		switch child.Kind() {
		case "wildcard_import":
			imp.Wildcard = true

		case "dotted_name", "identifier":
			imp.Items = append(imp.Items, RawImportItem{Name: ctx.Text(child)})

		case "aliased_import":
			item := RawImportItem{}
			if n := child.ChildByFieldName("name"); n != nil {
				item.Name = ctx.Text(n)
			}
			if a := child.ChildByFieldName("alias"); a != nil {
				item.Alias = ctx.Text(a)
			}
			imp.Items = append(imp.Items, item)
		}
	}

	mod.Imports = append(mod.Imports, imp)
}

func (e *PythonExtractor) extractDecorators(ctx *ExtractionContext, node *sitter.Node) []string {
	var decorators []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "decorator" {
			decorators = append(decorators, strings.TrimPrefix(ctx.Text(child), "@"))
		}
	}
	return decorators
}

// leadingDocstring returns the docstring when the first statement of a
// module or block is a bare string expression.
func (e *PythonExtractor) leadingDocstring(ctx *ExtractionContext, body *sitter.Node) string {
	for i := uint(0); i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		switch stmt.Kind() {
		case "comment":
			continue
		case "expression_statement":
			if stmt.ChildCount() == 1 {
				return ctx.StringLiteral(stmt.Child(0))
			}
			return ""
		default:
			return ""
		}
	}
	return ""
}

// followingDocstring returns the bare string statement following index i,
// used for attribute docstrings.
func (e *PythonExtractor) followingDocstring(ctx *ExtractionContext, body *sitter.Node, i uint) string {
	if i+1 >= body.ChildCount() {
		return ""
	}
	next := body.Child(i + 1)
	if next.Kind() != "expression_statement" || next.ChildCount() != 1 {
		return ""
	}
	return ctx.StringLiteral(next.Child(0))
}
