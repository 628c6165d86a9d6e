// token.go defines the token types produced by the template tokenizer.
package tpl

// Namespace is the tag prefix that marks engine-owned markup, as in <cx:tag>.
const Namespace = "cx"

// Kinds interpreted by the engine. Tokens of any other kind are kept in the
// token sequence but never indexed.
const (
	KindTag    = "tag"
	KindRegion = "region"
)

// DefaultRegionType is the region type used when a region has no type attribute.
const DefaultRegionType = "page"

// Token is a single parsed <cx:KIND ...>...</cx:KIND> construct.
type Token struct {
	Match      string            // full original span, used as the literal replace key
	Kind       string            // "tag", "region", or an uninterpreted kind
	Namespace  string            // always Namespace
	Attributes map[string]string // parsed KEY="VALUE" pairs, never nil
	Content    string            // inline default text between open and close tag
	Key        string            // name attribute or positional index; empty for unknown kinds
	Position   int               // byte offset in the text the token was parsed from
}

// Name returns the token's name attribute and whether it was set.
func (t Token) Name() (string, bool) {
	name, ok := t.Attributes["name"]
	return name, ok
}

// RegionType returns the declared region type, or DefaultRegionType.
func (t Token) RegionType() string {
	if typ, ok := t.Attributes["type"]; ok {
		return typ
	}
	return DefaultRegionType
}
