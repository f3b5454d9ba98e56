// # internal/docstring/annotation.go
package docstring

import (
	"regexp"
	"strings"
)

// Token is a fragment of a type expression. Name tokens are candidate
// dotted names for resolution; the rest is punctuation and keywords
// passed through verbatim.
type Token struct {
	Text   string
	IsName bool
}

func isNameChar(r byte) bool {
	return r == '_' || r == '.' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// TokenizeAnnotation splits a type expression like
// "dict[str, Point | None]" into name tokens and separators. Quoted
// forward references yield the quoted name without its quotes.
func TokenizeAnnotation(raw string) []Token {
	var tokens []Token
	i := 0
	for i < len(raw) {
		c := raw[i]

		if c == '\'' || c == '"' {
			end := strings.IndexByte(raw[i+1:], c)
			if end >= 0 {
				inner := raw[i+1 : i+1+end]
				tokens = append(tokens, Token{Text: inner, IsName: isDottedWord(inner)})
				i += end + 2
				continue
			}
		}

		if isNameChar(c) {
			j := i
			for j < len(raw) && isNameChar(raw[j]) {
				j++
			}
			word := raw[i:j]
			tokens = append(tokens, Token{Text: word, IsName: isDottedWord(word)})
			i = j
			continue
		}

		j := i
		for j < len(raw) && !isNameChar(raw[j]) && raw[j] != '\'' && raw[j] != '"' {
			j++
		}
		tokens = append(tokens, Token{Text: raw[i:j]})
		i = j
	}
	return tokens
}

var dottedWord = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func isDottedWord(s string) bool {
	return dottedWord.MatchString(s)
}

// linkPattern matches the shorthand cross-reference syntax
// [display text][dotted.target].
var linkPattern = regexp.MustCompile(`\[([^\[\]]*)\]\[([A-Za-z_][A-Za-z0-9_.]*)\]`)

// ReplaceLinks rewrites every [text][target] occurrence using repl. An
// empty display text means the target doubles as the text.
func ReplaceLinks(text string, repl func(display, target string) string) string {
	return linkPattern.ReplaceAllStringFunc(text, func(match string) string {
		m := linkPattern.FindStringSubmatch(match)
		display, target := m[1], m[2]
		if display == "" {
			display = target
		}
		return repl(display, target)
	})
}
