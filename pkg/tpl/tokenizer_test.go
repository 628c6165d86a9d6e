package tpl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
}

func TestTokenize_PlainHTML(t *testing.T) {
	assert.Empty(t, Tokenize("<html><body><p>Hello</p></body></html>"))
}

func TestTokenize_NamedTag(t *testing.T) {
	input := `<title><cx:tag name="title">Untitled</cx:tag></title>`
	tokens := Tokenize(input)
	require.Len(t, tokens, 1)

	want := Token{
		Match:      `<cx:tag name="title">Untitled</cx:tag>`,
		Kind:       KindTag,
		Namespace:  "cx",
		Attributes: map[string]string{"name": "title"},
		Content:    "Untitled",
		Key:        "title",
		Position:   7,
	}
	if diff := cmp.Diff(want, tokens[0]); diff != "" {
		t.Errorf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_RegionAttributes(t *testing.T) {
	input := `<cx:region name="sidebar" type="global" class="wide">Default Sidebar</cx:region>`
	tokens := Tokenize(input)
	require.Len(t, tokens, 1)

	assert.Equal(t, KindRegion, tokens[0].Kind)
	assert.Equal(t, "sidebar", tokens[0].Key)
	assert.Equal(t, map[string]string{"name": "sidebar", "type": "global", "class": "wide"}, tokens[0].Attributes)
	assert.Equal(t, "global", tokens[0].RegionType())
	assert.Equal(t, "Default Sidebar", tokens[0].Content)
}

func TestTokenize_NoAttributes(t *testing.T) {
	tokens := Tokenize(`<cx:tag>X</cx:tag>`)
	require.Len(t, tokens, 1)
	assert.NotNil(t, tokens[0].Attributes)
	assert.Empty(t, tokens[0].Attributes)
	assert.Equal(t, "0", tokens[0].Key)
	assert.Equal(t, DefaultRegionType, tokens[0].RegionType())
}

func TestTokenize_PositionalKeysPerKind(t *testing.T) {
	input := `<cx:tag>a</cx:tag><cx:region>r0</cx:region><cx:tag name="n">b</cx:tag><cx:tag>c</cx:tag><cx:region>r1</cx:region>`
	tokens := Tokenize(input)
	require.Len(t, tokens, 5)

	var keys []string
	for _, tok := range tokens {
		keys = append(keys, tok.Kind+":"+tok.Key)
	}
	assert.Equal(t, []string{"tag:0", "region:0", "tag:n", "tag:1", "region:1"}, keys)
}

func TestTokenize_DuplicateAttributeLastWins(t *testing.T) {
	tokens := Tokenize(`<cx:tag name="first" name="second">X</cx:tag>`)
	require.Len(t, tokens, 1)
	assert.Equal(t, "second", tokens[0].Key)
}

func TestTokenize_MalformedAttributes(t *testing.T) {
	tokens := Tokenize(`<cx:tag name="unterminated>X</cx:tag>`)
	require.Len(t, tokens, 1)
	assert.Empty(t, tokens[0].Attributes)
	assert.Equal(t, "0", tokens[0].Key)
	assert.Equal(t, "X", tokens[0].Content)
}

func TestTokenize_MismatchedKindIsInert(t *testing.T) {
	input := `<cx:tag name="a">X</cx:region> after`
	assert.Empty(t, Tokenize(input))
}

func TestTokenize_OtherNamespaceIgnored(t *testing.T) {
	input := `<ac:tag name="a">X</ac:tag><svg:rect>r</svg:rect>`
	assert.Empty(t, Tokenize(input))
}

func TestTokenize_UnclosedThenValid(t *testing.T) {
	input := `<cx:tag name="broken">oops <cx:region name="main">Body</cx:region>`
	tokens := Tokenize(input)
	require.Len(t, tokens, 1)
	assert.Equal(t, KindRegion, tokens[0].Kind)
	assert.Equal(t, "main", tokens[0].Key)
}

func TestTokenize_NonGreedyContent(t *testing.T) {
	input := `<cx:tag name="a">A</cx:tag> middle <cx:tag name="b">B</cx:tag>`
	tokens := Tokenize(input)
	require.Len(t, tokens, 2)
	assert.Equal(t, "A", tokens[0].Content)
	assert.Equal(t, "B", tokens[1].Content)
}

func TestTokenize_NestedDifferentKindIsLiteral(t *testing.T) {
	input := `<cx:region name="main"><h1><cx:tag name="title">T</cx:tag></h1></cx:region>`
	tokens := Tokenize(input)
	require.Len(t, tokens, 1)
	assert.Equal(t, KindRegion, tokens[0].Kind)
	assert.Equal(t, `<h1><cx:tag name="title">T</cx:tag></h1>`, tokens[0].Content)
}

func TestTokenize_NestedSameKindClosesEarly(t *testing.T) {
	input := `<cx:region name="outer">a<cx:region name="inner">b</cx:region>c</cx:region>`
	tokens := Tokenize(input)
	require.Len(t, tokens, 1)
	assert.Equal(t, "outer", tokens[0].Key)
	assert.Equal(t, `a<cx:region name="inner">b`, tokens[0].Content)
}

func TestTokenize_UnknownKindKept(t *testing.T) {
	tokens := Tokenize(`<cx:widget id="w1">fallback</cx:widget>`)
	require.Len(t, tokens, 1)
	assert.Equal(t, "widget", tokens[0].Kind)
	assert.Empty(t, tokens[0].Key)
	assert.Equal(t, "w1", tokens[0].Attributes["id"])
}

func TestTokenize_MultilineContent(t *testing.T) {
	input := "<cx:region name=\"main\">\n  <p>Line one</p>\n  <p>Line two</p>\n</cx:region>"
	tokens := Tokenize(input)
	require.Len(t, tokens, 1)
	assert.Equal(t, "\n  <p>Line one</p>\n  <p>Line two</p>\n", tokens[0].Content)
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"whitespace only", "   ", map[string]string{}},
		{"single", ` name="title"`, map[string]string{"name": "title"}},
		{"empty value", ` name=""`, map[string]string{"name": ""}},
		{"multiple", ` name="a" type="global"`, map[string]string{"name": "a", "type": "global"}},
		{"unquoted ignored", ` name=title type="x"`, map[string]string{"type": "x"}},
		{"single quotes ignored", ` name='title'`, map[string]string{}},
		{"dashes in key", ` data-id="7"`, map[string]string{"data-id": "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAttributes(tt.input))
		})
	}
}
