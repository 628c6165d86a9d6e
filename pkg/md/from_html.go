package md

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// ConvertOptions configures the HTML to markdown conversion.
type ConvertOptions struct {
	// CleanTokens collapses any remaining cx tags and regions to their
	// inline content before converting.
	CleanTokens bool
}

// FromHTML converts HTML to markdown.
func FromHTML(html string) (string, error) {
	return FromHTMLWithOptions(html, ConvertOptions{})
}

// FromHTMLWithOptions converts HTML to markdown with configurable options.
func FromHTMLWithOptions(html string, opts ConvertOptions) (string, error) {
	if html == "" {
		return "", nil
	}

	if opts.CleanTokens {
		html = tpl.New(html).Clean()
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", err
	}

	// Clean up the output - trim whitespace
	return strings.TrimSpace(markdown), nil
}
