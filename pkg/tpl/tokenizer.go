// tokenizer.go implements discovery of <cx:KIND>...</cx:KIND> tokens in template text.
package tpl

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Matches the opening tag <cx:KIND ATTRS>. The closing tag is located with a
	// literal search because RE2 has no back-references.
	openTagPattern = regexp.MustCompile(`<` + regexp.QuoteMeta(Namespace) + `:([^\s>/]+)([^>]*)>`)
	// Matches KEY="VALUE" pairs inside an opening tag
	attributePattern = regexp.MustCompile(`([^\s="]+)="([^"]*)"`)
)

// Tokenize scans text for engine tokens and returns them in document order.
//
// A token is an opening tag <cx:KIND ATTRS>, its inline content, and the first
// following </cx:KIND> with the same kind. Content is matched non-greedily, so a
// token of the same kind nested inside another token's body closes the outer
// token early. Anything inside a matched body is literal content of the outer
// token and is never tokenized on its own. An opening tag without a matching
// close tag is left as plain text.
//
// Tag and region tokens get a Key: their name attribute, or their position among
// unnamed tokens of the same kind, counting from zero.
func Tokenize(text string) []Token {
	var tokens []Token
	counters := map[string]int{}
	pos := 0

	for pos < len(text) {
		remaining := text[pos:]
		loc := openTagPattern.FindStringSubmatchIndex(remaining)
		if loc == nil {
			break
		}

		start := pos + loc[0]
		openEnd := pos + loc[1]
		kind := remaining[loc[2]:loc[3]]
		rawAttrs := remaining[loc[4]:loc[5]]

		closeTag := "</" + Namespace + ":" + kind + ">"
		contentLen := strings.Index(text[openEnd:], closeTag)
		if contentLen < 0 {
			// Unclosed or mismatched; resume just past this '<'
			pos = start + 1
			continue
		}
		end := openEnd + contentLen + len(closeTag)

		token := Token{
			Match:      text[start:end],
			Kind:       kind,
			Namespace:  Namespace,
			Attributes: parseAttributes(rawAttrs),
			Content:    text[openEnd : openEnd+contentLen],
			Position:   start,
		}
		if kind == KindTag || kind == KindRegion {
			if name, ok := token.Name(); ok {
				token.Key = name
			} else {
				token.Key = strconv.Itoa(counters[kind])
				counters[kind]++
			}
		}

		tokens = append(tokens, token)
		pos = end
	}

	return tokens
}

// parseAttributes parses KEY="VALUE" pairs. Duplicate keys resolve to the last
// occurrence. Text that does not form a pair (unterminated quotes, bare words)
// is ignored.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	s = strings.TrimSpace(s)
	if s == "" {
		return attrs
	}
	for _, m := range attributePattern.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}
