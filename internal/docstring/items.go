// # internal/docstring/items.go
package docstring

import (
	"regexp"
	"strings"
)

var (
	itemBreak          = regexp.MustCompile(`\n\S`)
	googleNameTypeText = regexp.MustCompile(`^\s*(\S+?)\s*\((.+?)\)\s*:\s*(.*)$`)
)

// splitItems cuts an item block at every line that starts without
// indentation; continuation lines stay attached to their item.
func splitItems(text string) []string {
	var items []string
	start := 0
	for _, loc := range itemBreak.FindAllStringIndex(text, -1) {
		if item := strings.TrimSpace(text[start:loc[0]]); item != "" {
			items = append(items, item)
		}
		start = loc[0]
	}
	if item := strings.TrimSpace(text[start:]); item != "" {
		items = append(items, item)
	}
	return items
}

// parseItems parses named entries: "name (type): text" in google style,
// "name : type" with an indented body in numpy style.
func parseItems(text string, style Style) []Item {
	var out []Item
	for _, raw := range splitItems(text) {
		lines := strings.Split(raw, "\n")
		var item Item
		if style == StyleNumpy {
			item = splitNumpyItem(lines)
		} else {
			item = splitGoogleItem(lines)
		}
		out = append(out, item)
	}
	return out
}

func splitGoogleItem(lines []string) Item {
	var item Item
	switch m := googleNameTypeText.FindStringSubmatch(lines[0]); {
	case m != nil:
		item = Item{Name: m[1], Type: m[2], Text: m[3]}
	case strings.Contains(lines[0], ":"):
		name, text, _ := strings.Cut(lines[0], ":")
		item = Item{Name: strings.TrimSpace(name), Text: strings.TrimSpace(text)}
	default:
		item = Item{Name: lines[0]}
	}
	if len(lines) > 1 {
		rest := Normalize("\n" + strings.Join(lines[1:], "\n"))
		item.Text = strings.TrimSpace(item.Text + "\n" + rest)
	}
	return item
}

func splitNumpyItem(lines []string) Item {
	var item Item
	if strings.Contains(lines[0], ":") {
		name, typ, _ := strings.Cut(lines[0], ":")
		item = Item{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)}
	} else {
		item = Item{Name: strings.TrimSpace(lines[0])}
	}
	if len(lines) > 1 {
		item.Text = Normalize("\n" + strings.Join(lines[1:], "\n"))
	}
	return item
}

// parseUnnamedItems handles Returns and Yields, where the leading token
// is a type rather than a name: "type: text" in google style, a bare
// type line with an indented body in numpy style.
func parseUnnamedItems(text string, style Style) []Item {
	lines := strings.Split(text, "\n")
	var typ string

	switch {
	case style == StyleGoogle && strings.Contains(lines[0], ":"):
		head, rest, _ := strings.Cut(lines[0], ":")
		typ = strings.TrimSpace(head)
		body := strings.TrimSpace(rest)
		text = strings.TrimSpace(body + "\n" + strings.Join(lines[1:], "\n"))
	case style == StyleNumpy && len(lines) > 1 && strings.HasPrefix(lines[1], " "):
		typ = strings.TrimSpace(lines[0])
		text = Normalize("\n" + strings.Join(lines[1:], "\n"))
	}

	item := Item{Type: typ, Text: text}

	// "name: type" inside the type slot names the value.
	if name, rest, ok := strings.Cut(item.Type, ":"); ok {
		item.Name = strings.TrimSpace(name)
		item.Type = strings.TrimSpace(rest)
	}
	return []Item{item}
}
