// # internal/docstring/docstring_test.go
package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectStyle(t *testing.T) {
	google := "Summary.\n\nArgs:\n    x (int): The value."
	assert.Equal(t, StyleGoogle, DetectStyle(google))

	numpy := "Summary.\n\nParameters\n----------\nx : int\n    The value."
	assert.Equal(t, StyleNumpy, DetectStyle(numpy))

	assert.Equal(t, StyleGoogle, DetectStyle(""))
	assert.Equal(t, StyleGoogle, DetectStyle("Just prose, nothing else."))
}

func TestParseGoogleSections(t *testing.T) {
	text := `Do the thing.

Longer description over
two lines.

Args:
    first (int): The first value.
    second (str): The second value,
        continued on the next line.

Returns:
    bool: True on success.

Raises:
    ValueError: When first is negative.
`
	doc := Parse(text, StyleAuto)

	assert.Equal(t, "Do the thing.\n\nLonger description over\ntwo lines.", doc.Text)
	require.Len(t, doc.Sections, 3)

	params := doc.Section("Parameters")
	require.NotNil(t, params)
	require.Len(t, params.Items, 2)
	assert.Equal(t, Item{Name: "first", Type: "int", Text: "The first value."}, params.Items[0])
	assert.Equal(t, "second", params.Items[1].Name)
	assert.Equal(t, "str", params.Items[1].Type)
	assert.Equal(t, "The second value,\ncontinued on the next line.", params.Items[1].Text)

	ret := doc.Section("Returns")
	require.NotNil(t, ret)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, "bool", ret.Items[0].Type)
	assert.Equal(t, "True on success.", ret.Items[0].Text)

	raises := doc.Section("Raises")
	require.NotNil(t, raises)
	require.Len(t, raises.Items, 1)
	assert.Equal(t, "ValueError", raises.Items[0].Name)
}

func TestParseNumpySections(t *testing.T) {
	text := `Compute a value.

Parameters
----------
x : int
    The input.
y : float
    The scale.

Returns
-------
float
    The scaled result.
`
	doc := Parse(text, StyleAuto)
	assert.Equal(t, "Compute a value.", doc.Text)

	params := doc.Section("Parameters")
	require.NotNil(t, params)
	require.Len(t, params.Items, 2)
	assert.Equal(t, Item{Name: "x", Type: "int", Text: "The input."}, params.Items[0])
	assert.Equal(t, Item{Name: "y", Type: "float", Text: "The scale."}, params.Items[1])

	ret := doc.Section("Returns")
	require.NotNil(t, ret)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, "float", ret.Items[0].Type)
	assert.Equal(t, "The scaled result.", ret.Items[0].Text)
}

func TestSectionHeaderAliasesAreCanonical(t *testing.T) {
	for header, canonical := range map[string]string{
		"Args":      "Parameters",
		"Arguments": "Parameters",
		"Params":    "Parameters",
		"Attrs":     "Attributes",
		"Return":    "Returns",
		"See also":  "See Also",
	} {
		doc := Parse("Summary.\n\n"+header+":\n    x: something.", StyleGoogle)
		require.Len(t, doc.Sections, 1, "header %q", header)
		assert.Equal(t, canonical, doc.Sections[0].Name, "header %q", header)
	}
}

func TestMalformedHeaderStaysProse(t *testing.T) {
	text := "Summary.\n\nNot A Header\nplain continuation text."
	doc := Parse(text, StyleGoogle)

	assert.Empty(t, doc.Sections)
	assert.Contains(t, doc.Text, "Not A Header")
}

func TestSeeAlsoAndNotesKeepText(t *testing.T) {
	text := `Summary.

Note:
    Remember to close the file.

See Also:
    [other.module][pkg.other]
`
	doc := Parse(text, StyleGoogle)

	note := doc.Section("Note")
	require.NotNil(t, note)
	assert.Equal(t, "Remember to close the file.", note.Text)

	seeAlso := doc.Section("See Also")
	require.NotNil(t, seeAlso)
	assert.Contains(t, seeAlso.Text, "[other.module][pkg.other]")
}

func TestNormalizeDedentsContinuationLines(t *testing.T) {
	raw := "Summary line.\n\n        Indented body.\n        Second line."
	assert.Equal(t, "Summary line.\n\nIndented body.\nSecond line.", Normalize(raw))
	assert.Equal(t, "", Normalize("   \n  "))
}

func TestParseIsDeterministic(t *testing.T) {
	text := "Summary.\n\nArgs:\n    a (int): One.\n\nReturns:\n    int: Two."
	assert.Equal(t, Parse(text, StyleAuto), Parse(text, StyleAuto))
}

func TestTokenizeAnnotation(t *testing.T) {
	tokens := TokenizeAnnotation("dict[str, Point | None]")

	var names []string
	for _, tok := range tokens {
		if tok.IsName {
			names = append(names, tok.Text)
		}
	}
	assert.Equal(t, []string{"dict", "str", "Point", "None"}, names)

	var joined string
	for _, tok := range tokens {
		joined += tok.Text
	}
	assert.Equal(t, "dict[str, Point | None]", joined)
}

func TestTokenizeAnnotationQuotedForwardRef(t *testing.T) {
	tokens := TokenizeAnnotation(`list["pkg.a.Node"]`)
	require.Len(t, tokens, 4)
	assert.Equal(t, Token{Text: "pkg.a.Node", IsName: true}, tokens[2])
}

func TestReplaceLinks(t *testing.T) {
	out := ReplaceLinks("See [the base][pkg.a.Base] and [][pkg.b].", func(display, target string) string {
		return "<" + display + "|" + target + ">"
	})
	assert.Equal(t, "See <the base|pkg.a.Base> and <pkg.b|pkg.b>.", out)
}
