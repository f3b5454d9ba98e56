// # internal/model/summary.go
package model

import (
	"strings"
)

// summaryLine extracts the leading summary from a docstring: text up to
// the first blank line or sentence terminator.
func summaryLine(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}

	if idx := strings.Index(doc, "\n\n"); idx >= 0 {
		doc = doc[:idx]
	}
	doc = strings.Join(strings.Fields(doc), " ")

	for i := 0; i < len(doc); i++ {
		if doc[i] != '.' && doc[i] != '!' && doc[i] != '?' {
			continue
		}
		// A terminator ends the sentence only at end of text or before a space.
		if i+1 == len(doc) || doc[i+1] == ' ' {
			return doc[:i+1]
		}
	}
	return doc
}
