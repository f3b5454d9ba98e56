// # internal/docstring/docstring.go
package docstring

import (
	"regexp"
	"strings"
)

type Style string

const (
	StyleAuto   Style = ""
	StyleGoogle Style = "google"
	StyleNumpy  Style = "numpy"
)

// Item is a named entry inside a section: a parameter, attribute,
// return value or exception, with an optional type expression.
type Item struct {
	Name string
	Type string
	Text string
}

// Section is a named block of a docstring. Parameters, Attributes and
// Raises carry items; prose sections carry text.
type Section struct {
	Name  string
	Type  string
	Text  string
	Items []Item
}

// Doc is a parsed docstring: the leading prose plus its sections in
// source order.
type Doc struct {
	Text     string
	Sections []Section
}

// Section returns the section with the given canonical name, or nil.
func (d *Doc) Section(name string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}
	return nil
}

// sectionNames maps every accepted spelling of a section header to its
// canonical form. The first entry of each group is canonical.
var sectionNames = [][]string{
	{"Parameters", "Parameter", "Params", "Param"},
	{"Parameters", "Arguments", "Argument", "Args", "Arg"},
	{"Attributes", "Attribute", "Attrs", "Attr"},
	{"Returns", "Return"},
	{"Raises", "Raise"},
	{"Yields", "Yield"},
	{"Example"},
	{"Examples"},
	{"Warning", "Warn"},
	{"Warnings", "Warns"},
	{"Note"},
	{"Notes"},
	{"See Also", "See also"},
}

// Parse parses a docstring. With StyleAuto the style is inferred from
// the text; plain prose with no recognizable headers comes back as a
// single text block.
func Parse(text string, style Style) Doc {
	text = Normalize(text)
	if text == "" {
		return Doc{}
	}
	if style == StyleAuto {
		style = DetectStyle(text)
	}

	var doc Doc
	for _, sec := range iterSections(text, style) {
		if sec.Name == "" && doc.Text == "" && len(doc.Sections) == 0 {
			doc.Text = sec.Text
			continue
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc
}

// DetectStyle classifies a docstring as numpy when any known section
// header is followed by an underline, google otherwise.
func DetectStyle(text string) Style {
	for _, group := range sectionNames {
		for _, name := range group {
			if strings.Contains(text, "\n\n"+name+"\n----") ||
				strings.Contains(text, "\n\n"+name+"\n====") {
				return StyleNumpy
			}
		}
	}
	return StyleGoogle
}

// Normalize strips the common indentation that triple-quoted literals
// carry on their continuation lines and trims surrounding blank space.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 {
		indent := -1
		for _, line := range lines[1:] {
			trimmed := strings.TrimLeft(line, " \t")
			if trimmed == "" {
				continue
			}
			n := len(line) - len(trimmed)
			if indent < 0 || n < indent {
				indent = n
			}
		}
		if indent > 0 {
			for i, line := range lines[1:] {
				if len(line) >= indent {
					lines[i+1] = line[indent:]
				} else {
					lines[i+1] = strings.TrimLeft(line, " \t")
				}
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var (
	googleSectionBreak = regexp.MustCompile(`\n\n\S`)
	numpySectionBreak  = regexp.MustCompile(`\n\n\n\S|\n\n.+\n[\-=]+\n`)
	googleHeader       = regexp.MustCompile(`^([A-Za-z0-9][^:]*):$`)
	numpyUnderline     = regexp.MustCompile(`^[\-=]+$`)
)

func splitSections(text string, style Style) []string {
	pattern := googleSectionBreak
	if style == StyleNumpy {
		pattern = numpySectionBreak
	}

	first := strings.Index(text, "\n\n")
	if first < 0 {
		return []string{strings.TrimSpace(text)}
	}

	var out []string
	start := first + 2
	out = append(out, strings.TrimSpace(text[:start]))

	base := start
	for _, loc := range pattern.FindAllStringIndex(text[base:], -1) {
		cut := base + loc[0]
		if chunk := strings.TrimSpace(text[start:cut]); chunk != "" {
			out = append(out, subsplit(chunk, style)...)
		}
		start = cut
	}
	out = append(out, subsplit(strings.TrimSpace(text[start:]), style)...)
	return out
}

// In numpy style an indented section ends where unindented text resumes.
func subsplit(text string, style Style) []string {
	if style == StyleGoogle {
		return []string{text}
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 3 || !strings.HasPrefix(lines[2], " ") {
		return []string{text}
	}
	return strings.Split(text, "\n\n")
}

// splitSection separates a section header from its dedented body.
// Chunks without a well-formed header come back with an empty name and
// stay prose.
func splitSection(text string, style Style) (string, string) {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return "", text
	}

	if style == StyleGoogle {
		if m := googleHeader.FindStringSubmatch(lines[0]); m != nil {
			return m[1], Normalize("\n" + strings.Join(lines[1:], "\n"))
		}
		return "", text
	}

	if numpyUnderline.MatchString(lines[1]) {
		return lines[0], Normalize("\n" + strings.Join(lines[2:], "\n"))
	}
	return "", text
}

func canonicalName(name string) string {
	for _, group := range sectionNames {
		for _, candidate := range group {
			if candidate == name {
				return group[0]
			}
		}
	}
	return name
}

func iterSections(text string, style Style) []Section {
	type namedText struct {
		name string
		text string
	}
	var pairs []namedText
	prev := namedText{}

	flush := func() {
		if prev.text != "" {
			pairs = append(pairs, prev)
			prev = namedText{}
		}
	}

	for _, chunk := range splitSections(text, style) {
		if chunk == "" {
			continue
		}
		name, body := splitSection(chunk, style)
		if body == "" {
			continue
		}
		name = canonicalName(name)

		if name == "" {
			if prev.text != "" {
				prev.text += "\n\n" + body
			} else {
				prev.text = body
			}
			continue
		}
		flush()
		pairs = append(pairs, namedText{name, body})
	}
	flush()

	var sections []Section
	for _, p := range pairs {
		switch p.name {
		case "Parameters", "Attributes", "Raises":
			sections = append(sections, Section{Name: p.name, Items: parseItems(p.text, style)})
		case "Returns", "Yields":
			sections = append(sections, Section{Name: p.name, Items: parseUnnamedItems(p.text, style)})
		default:
			sections = append(sections, Section{Name: p.name, Text: p.text})
		}
	}
	return sections
}
