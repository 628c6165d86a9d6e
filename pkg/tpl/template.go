// Package tpl parses page templates for <cx:tag> and <cx:region> tokens and
// replaces them with rendered content.
//
// A Template owns a single text buffer. Tokens are discovered once, on first
// access, from the buffer's initial text; every replacement rewrites the buffer
// by literal search-and-replace of a token's original markup, so lookups always
// resolve against the original parse and never against intermediate states.
//
// A Template is meant for one render. It has no internal locking and must not
// be shared between goroutines.
package tpl

import (
	"maps"
	"slices"
	"strings"
)

// Template is a parsed page template and its substitution buffer.
type Template struct {
	content string

	parsed      bool
	tokens      []Token
	tags        map[string]Token
	tagNames    []string
	regions     map[string]Token
	regionNames []string
	regionsType map[string][]string
}

// New creates a Template over raw template text.
func New(text string) *Template {
	return &Template{content: text}
}

// Content returns the current buffer.
func (t *Template) Content() string {
	return t.content
}

// String returns the current buffer. It does not clean unreplaced tokens.
func (t *Template) String() string {
	return t.content
}

// Parse tokenizes the template and builds the tag, region and region-type
// tables. Only the first call does any work; later calls return the same tokens.
func (t *Template) Parse() []Token {
	if t.parsed {
		return t.tokens
	}

	t.tokens = Tokenize(t.content)
	t.tags = make(map[string]Token)
	t.regions = make(map[string]Token)
	t.regionsType = make(map[string][]string)

	for _, token := range t.tokens {
		switch token.Kind {
		case KindTag:
			if _, seen := t.tags[token.Key]; !seen {
				t.tagNames = append(t.tagNames, token.Key)
			}
			t.tags[token.Key] = token
		case KindRegion:
			if _, seen := t.regions[token.Key]; !seen {
				t.regionNames = append(t.regionNames, token.Key)
			}
			t.regions[token.Key] = token
			typ := token.RegionType()
			t.regionsType[typ] = append(t.regionsType[typ], token.Key)
		}
	}

	t.parsed = true
	return t.tokens
}

// Tokens returns every parsed token in document order, of all kinds.
func (t *Template) Tokens() []Token {
	return slices.Clone(t.Parse())
}

// Tags returns the tag table keyed by name or positional index.
func (t *Template) Tags() map[string]Token {
	t.Parse()
	return maps.Clone(t.tags)
}

// TagNames returns tag keys in document order.
func (t *Template) TagNames() []string {
	t.Parse()
	return slices.Clone(t.tagNames)
}

// Regions returns the region table keyed by name or positional index.
func (t *Template) Regions() map[string]Token {
	t.Parse()
	return maps.Clone(t.regions)
}

// RegionNames returns region keys in document order.
func (t *Template) RegionNames() []string {
	t.Parse()
	return slices.Clone(t.regionNames)
}

// RegionsType returns the keys of regions declaring the given type, in document
// order. Regions without a type attribute have type "page". A key repeated in
// the template appears once per occurrence.
func (t *Template) RegionsType(typ string) []string {
	t.Parse()
	keys := t.regionsType[typ]
	if keys == nil {
		return []string{}
	}
	return slices.Clone(keys)
}

// ReplaceToken replaces every occurrence of match in the buffer. It always
// reports true; callers are expected to pass markup from a parsed token.
// The token tables are built from the buffer before the first replacement.
func (t *Template) ReplaceToken(match, replacement string) bool {
	t.Parse()
	t.content = strings.ReplaceAll(t.content, match, replacement)
	return true
}

// ReplaceTag replaces the named tag's original markup with replacement. It
// reports false and leaves the buffer untouched if no such tag was parsed.
//
// Every occurrence of the tag's markup is replaced, including identical markup
// parsed as a different token.
func (t *Template) ReplaceTag(name, replacement string) bool {
	t.Parse()
	token, ok := t.tags[name]
	if !ok {
		return false
	}
	return t.ReplaceToken(token.Match, replacement)
}

// ReplaceRegion replaces the named region's original markup with replacement.
// It reports false and leaves the buffer untouched if no such region was parsed.
func (t *Template) ReplaceRegion(name, replacement string) bool {
	t.Parse()
	token, ok := t.regions[name]
	if !ok {
		return false
	}
	return t.ReplaceToken(token.Match, replacement)
}

// Clean replaces every token still present in the buffer with its inline
// default content and returns the result. It should run once, after all
// targeted replacements; tokens cleaned early can no longer be replaced.
func (t *Template) Clean() string {
	for _, token := range t.Parse() {
		t.content = strings.ReplaceAll(t.content, token.Match, token.Content)
	}
	return t.content
}
