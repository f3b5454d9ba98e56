// # internal/parser/context.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ExtractionContext carries shared state/helpers used by extractors.
type ExtractionContext struct {
	Source []byte
	Path   string
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	if node == nil {
		return ""
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return c.Text(child)
		}
	}
	return ""
}

// StringLiteral returns the content of a python string node without
// quotes or prefixes, or "" when the node is not a string.
func (c *ExtractionContext) StringLiteral(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind() == "concatenated_string" {
		out := ""
		for i := uint(0); i < node.ChildCount(); i++ {
			out += c.StringLiteral(node.Child(i))
		}
		return out
	}
	if node.Kind() != "string" {
		return ""
	}
	out := ""
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "string_content" {
			out += c.Text(child)
		}
	}
	return out
}
