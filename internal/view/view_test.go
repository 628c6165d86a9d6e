package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"empty (default)", "", false},
		{"table", "table", false},
		{"json", "json", false},
		{"plain", "plain", false},
		{"invalid", "invalid", true},
		{"xml", "xml", true},
		{"TABLE uppercase", "TABLE", true}, // case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid output format")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidFormats(t *testing.T) {
	formats := ValidFormats()
	assert.Contains(t, formats, "table")
	assert.Contains(t, formats, "json")
	assert.Contains(t, formats, "plain")
	assert.Len(t, formats, 3)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncate with ellipsis", "hello world", 8, "hello..."},
		{"very short max", "hello", 3, "hel"},
		{"empty string", "", 10, ""},
		{"unicode", "héllo wörld", 8, "héllo..."},
		{"combining marks", "he\u0301llo world", 8, "he\u0301llo..."},
		{"emoji", "👍🏽 great page", 5, "👍🏽 ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxLen)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestRenderer(format Format) (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRenderer(format, true)
	r.SetWriter(&buf)
	return r, &buf
}

var (
	pageHeaders = []string{"ID", "TITLE", "URL"}
	pageRows    = [][]string{
		{"1", "Home", "/"},
		{"120", "About Us", "/about/"},
	}
)

func TestRenderer_RenderTable(t *testing.T) {
	t.Run("table aligns columns", func(t *testing.T) {
		r, buf := newTestRenderer(FormatTable)
		r.RenderTable(pageHeaders, pageRows)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "ID   TITLE     URL", lines[0])
		assert.Equal(t, "120  About Us  /about/", lines[2])
	})

	t.Run("plain omits headers", func(t *testing.T) {
		r, buf := newTestRenderer(FormatPlain)
		r.RenderTable(pageHeaders, pageRows)

		assert.Equal(t, "1\tHome\t/\n120\tAbout Us\t/about/\n", buf.String())
	})

	t.Run("json keys are lowercase headers", func(t *testing.T) {
		r, buf := newTestRenderer(FormatJSON)
		r.RenderTable(pageHeaders, pageRows)

		var result []map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		require.Len(t, result, 2)
		assert.Equal(t, map[string]string{"id": "120", "title": "About Us", "url": "/about/"}, result[1])
	})

	t.Run("json skips missing columns", func(t *testing.T) {
		r, buf := newTestRenderer(FormatJSON)
		r.RenderTable(pageHeaders, [][]string{{"1", "Home"}})

		var result []map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		_, exists := result[0]["url"]
		assert.False(t, exists)
	})

	t.Run("empty table", func(t *testing.T) {
		r, buf := newTestRenderer(FormatTable)
		r.RenderTable(pageHeaders, nil)
		assert.Equal(t, "ID  TITLE  URL", strings.TrimSpace(buf.String()))

		r, buf = newTestRenderer(FormatJSON)
		r.RenderTable(pageHeaders, nil)
		assert.Equal(t, "null", strings.TrimSpace(buf.String()))
	})
}

func TestRenderer_RenderJSON(t *testing.T) {
	r, buf := newTestRenderer(FormatJSON)
	require.NoError(t, r.RenderJSON(map[string]string{"status": "deleted", "url": "/about/"}))

	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "deleted", result["status"])

	buf.Reset()
	require.NoError(t, r.RenderJSON([]string{}))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))

	assert.Error(t, r.RenderJSON(make(chan int)))
}

func TestRenderer_RenderKeyValue(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	r.RenderKeyValue("URL", "/about/")
	assert.Equal(t, "URL: /about/\n", buf.String())

	r, buf = newTestRenderer(FormatJSON)
	r.RenderKeyValue("title", `say "hi"`)
	var result map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, `say "hi"`, result["title"])
}

func TestRenderer_Messages(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	assert.Equal(t, FormatTable, r.Format())

	r.RenderText("No pages found.")
	r.Success("Created page: About")
	r.Warning("Region sidebar is not in the template")
	r.Error("Template not found")

	assert.Equal(t, "No pages found.\n"+
		"✓ Created page: About\n"+
		"! Region sidebar is not in the template\n"+
		"✗ Template not found\n", buf.String())
}
