// # internal/render/renderer.go
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"docref/internal/docstring"
	"docref/internal/model"
	"docref/internal/resolver"
)

// Renderer turns model entities into markdown pages. Output is a pure
// function of the model: rendering the same model twice produces
// byte-identical pages.
type Renderer struct {
	m     *model.Model
	res   *resolver.Resolver
	style docstring.Style
}

func NewRenderer(m *model.Model, res *resolver.Resolver, style docstring.Style) *Renderer {
	return &Renderer{m: m, res: res, style: style}
}

// PagePath maps a module's qualified name to its page location below
// the output directory: dots become path separators.
func PagePath(moduleFQN string) string {
	return strings.ReplaceAll(moduleFQN, ".", "/") + ".md"
}

// relURL builds the link from one module page to an entity's anchor on
// its owning module's page.
func relURL(fromModule string, target *model.Entity) string {
	owner := target.OwningModule()
	if owner == nil {
		owner = target
	}

	from := strings.Split(fromModule, ".")
	to := strings.Split(owner.Name, ".")

	// The page for a.b lives at a/b.md, so the source directory is the
	// module path minus its last segment.
	fromDir := from[:len(from)-1]

	common := 0
	for common < len(fromDir) && common < len(to)-1 && fromDir[common] == to[common] {
		common++
	}

	var b strings.Builder
	for i := common; i < len(fromDir); i++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[common:], "/"))
	b.WriteString(".md")

	b.WriteString("#" + target.Name)
	return b.String()
}

// link renders a single reference occurrence. Resolved names become
// relative links keeping the literal as display text, externals become
// hover spans carrying the expanded name, everything else stays plain.
func (r *Renderer) link(ctx *model.Entity, fromModule, display, name string) string {
	ref := r.res.Resolve(ctx, name)
	switch ref.Kind {
	case resolver.KindResolved:
		return fmt.Sprintf("[%s](%s)", display, relURL(fromModule, ref.Target))
	case resolver.KindExternal:
		return fmt.Sprintf("<span title=%q>%s</span>", ref.FQN, display)
	default:
		return display
	}
}

// prose substitutes [text][target] occurrences in running text.
func (r *Renderer) prose(ctx *model.Entity, fromModule, text string) string {
	return docstring.ReplaceLinks(text, func(display, target string) string {
		return r.link(ctx, fromModule, display, target)
	})
}

// annotation renders a type expression with every name token linked.
func (r *Renderer) annotation(ctx *model.Entity, fromModule, raw string) string {
	var b strings.Builder
	for _, tok := range docstring.TokenizeAnnotation(raw) {
		if tok.IsName {
			b.WriteString(r.link(ctx, fromModule, tok.Text, tok.Text))
		} else {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

// ModulePage renders the full page for one module or package.
func (r *Renderer) ModulePage(mod *model.Entity) string {
	var b strings.Builder
	from := mod.Name

	fmt.Fprintf(&b, "# <a id=%q></a> %s\n\n", mod.Name, mod.Name)

	if mod.Docstring != "" {
		r.writeDoc(&b, mod, from, mod.Docstring, 0)
	}

	if sub := submodules(mod); len(sub) > 0 {
		b.WriteString("## Modules\n\n")
		b.WriteString("| Module | Summary |\n|---|---|\n")
		for _, child := range sub {
			fmt.Fprintf(&b, "| [%s](%s) | %s |\n",
				child.ShortName, relURL(from, child), tableCell(child.Summary()))
		}
		b.WriteString("\n")
	}

	if members := documentedMembers(mod); len(members) > 0 {
		b.WriteString("## Contents\n\n")
		b.WriteString("| Name | Kind | Summary |\n|---|---|---|\n")
		for _, child := range members {
			fmt.Fprintf(&b, "| [%s](#%s) | %s | %s |\n",
				child.ShortName, child.Name, child.Kind, tableCell(child.Summary()))
		}
		b.WriteString("\n")

		for _, child := range members {
			r.writeEntity(&b, child, from, 2)
		}
	}

	return b.String()
}

// IndexPage renders the site root listing every module.
func (r *Renderer) IndexPage() string {
	var b strings.Builder
	b.WriteString("# API Reference\n\n")
	b.WriteString("| Module | Summary |\n|---|---|\n")
	for _, mod := range r.m.Modules() {
		fmt.Fprintf(&b, "| [%s](%s) | %s |\n", mod.Name, PagePath(mod.Name), tableCell(mod.Summary()))
	}
	return b.String()
}

func (r *Renderer) writeEntity(b *strings.Builder, e *model.Entity, fromModule string, depth int) {
	heading := strings.Repeat("#", depth)
	fmt.Fprintf(b, "%s <a id=%q></a> %s %s\n\n", heading, e.Name, kindLabel(e), e.ShortName)

	if sig := r.signature(e, fromModule); sig != "" {
		fmt.Fprintf(b, "%s\n\n", sig)
	}

	if e.Kind == model.KindClass && len(e.BaseNames) > 0 {
		var bases []string
		for _, name := range e.BaseNames {
			bases = append(bases, r.link(e, fromModule, name, name))
		}
		fmt.Fprintf(b, "Bases: %s\n\n", strings.Join(bases, ", "))
	}

	if e.Docstring != "" {
		r.writeDoc(b, e, fromModule, e.Docstring, depth)
	}

	for _, child := range e.Children {
		if e.Kind == model.KindClass || child.Docstring != "" {
			r.writeEntity(b, child, fromModule, min(depth+1, 6))
		}
	}
}

// signature renders the callable or attribute header line with linked
// annotations.
func (r *Renderer) signature(e *model.Entity, fromModule string) string {
	switch e.Kind {
	case model.KindFunction, model.KindMethod:
		var b strings.Builder
		b.WriteString("`")
		if e.IsAsync {
			b.WriteString("async ")
		}
		b.WriteString("def " + e.ShortName + "`(")
		b.WriteString(r.params(e, fromModule))
		b.WriteString(")")
		if e.Annotation != nil {
			b.WriteString(" → " + r.annotation(e, fromModule, e.Annotation.Raw))
		}
		return b.String()
	case model.KindProperty, model.KindAttribute:
		if e.Annotation != nil {
			return "Type: " + r.annotation(e, fromModule, e.Annotation.Raw)
		}
	}
	return ""
}

func (r *Renderer) params(e *model.Entity, fromModule string) string {
	var parts []string
	for _, p := range e.Params {
		s := p.Name
		if p.Annotation != nil {
			s += ": " + r.annotation(e, fromModule, p.Annotation.Raw)
		}
		if p.Default != "" {
			s += " = `" + p.Default + "`"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func (r *Renderer) writeDoc(b *strings.Builder, ctx *model.Entity, fromModule, raw string, depth int) {
	doc := docstring.Parse(raw, r.style)

	if doc.Text != "" {
		b.WriteString(r.prose(ctx, fromModule, doc.Text))
		b.WriteString("\n\n")
	}

	for _, sec := range doc.Sections {
		switch sec.Name {
		case "Parameters", "Attributes":
			fmt.Fprintf(b, "**%s**\n\n", sec.Name)
			b.WriteString("| Name | Type | Description |\n|---|---|---|\n")
			for _, item := range sec.Items {
				fmt.Fprintf(b, "| %s | %s | %s |\n",
					item.Name,
					tableCell(r.annotation(ctx, fromModule, item.Type)),
					tableCell(r.prose(ctx, fromModule, item.Text)))
			}
			b.WriteString("\n")
		case "Raises":
			b.WriteString("**Raises**\n\n")
			for _, item := range sec.Items {
				fmt.Fprintf(b, "- %s: %s\n",
					r.link(ctx, fromModule, item.Name, item.Name),
					r.prose(ctx, fromModule, item.Text))
			}
			b.WriteString("\n")
		case "Returns", "Yields":
			fmt.Fprintf(b, "**%s**\n\n", sec.Name)
			for _, item := range sec.Items {
				line := r.prose(ctx, fromModule, item.Text)
				if item.Type != "" {
					line = r.annotation(ctx, fromModule, item.Type) + ": " + line
				}
				fmt.Fprintf(b, "%s\n", line)
			}
			b.WriteString("\n")
		case "Note", "Notes", "Warning", "Warnings", "See Also":
			body := r.prose(ctx, fromModule, sec.Text)
			if sec.Name == "See Also" {
				body = r.seeAlso(ctx, fromModule, body)
			}
			fmt.Fprintf(b, "> **%s**\n>\n", sec.Name)
			for _, line := range strings.Split(body, "\n") {
				fmt.Fprintf(b, "> %s\n", line)
			}
			b.WriteString("\n")
		default:
			if sec.Name != "" {
				fmt.Fprintf(b, "**%s**\n\n", sec.Name)
			}
			b.WriteString(r.prose(ctx, fromModule, sec.Text))
			b.WriteString("\n\n")
		}
	}
}

// seeAlsoNames matches a line that is a comma-separated list of dotted
// names, optionally followed by a colon and description.
var seeAlsoNames = regexp.MustCompile(`^(\s*)([A-Za-z_][A-Za-z0-9_.]*(?:\s*,\s*[A-Za-z_][A-Za-z0-9_.]*)*)(\s*(?::.*)?)$`)

// seeAlso links bare dotted names listed in a See Also section. Prose
// lines pass through untouched.
func (r *Renderer) seeAlso(ctx *model.Entity, fromModule, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := seeAlsoNames.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		names := strings.Split(m[2], ",")
		for j, n := range names {
			n = strings.TrimSpace(n)
			names[j] = r.link(ctx, fromModule, n, n)
		}
		lines[i] = m[1] + strings.Join(names, ", ") + m[3]
	}
	return strings.Join(lines, "\n")
}

func submodules(mod *model.Entity) []*model.Entity {
	var out []*model.Entity
	for _, child := range mod.Children {
		if child.IsNamespace() && child.Kind != model.KindClass {
			out = append(out, child)
		}
	}
	return out
}

// documentedMembers returns the module's non-submodule members. When the
// module declares __all__, listed names come first in __all__ order;
// everything else keeps declaration order.
func documentedMembers(mod *model.Entity) []*model.Entity {
	var out []*model.Entity
	for _, child := range mod.Children {
		if child.IsNamespace() && child.Kind != model.KindClass {
			continue
		}
		out = append(out, child)
	}

	if mod.HasExports {
		rank := make(map[string]int, len(mod.Exports))
		for i, name := range mod.Exports {
			rank[name] = i
		}
		unlisted := len(mod.Exports)
		sort.SliceStable(out, func(i, j int) bool {
			ri, ok := rank[out[i].ShortName]
			if !ok {
				ri = unlisted
			}
			rj, ok := rank[out[j].ShortName]
			if !ok {
				rj = unlisted
			}
			return ri < rj
		})
	}

	return out
}

func kindLabel(e *model.Entity) string {
	switch e.Kind {
	case model.KindClass:
		return "class"
	case model.KindFunction, model.KindMethod:
		return "def"
	case model.KindProperty:
		return "property"
	case model.KindAttribute:
		return "attr"
	default:
		return e.Kind.String()
	}
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
