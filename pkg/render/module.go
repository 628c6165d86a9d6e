package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/pkg/md"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

var (
	themeAssetPattern = regexp.MustCompile(`(?i)(\s(?:src|href))="@([^":]*)"`)
	rootAssetPattern  = regexp.MustCompile(`(?i)(\s(?:src|href))="!([^":]*)"`)
	headClosePattern  = regexp.MustCompile(`(?i)</head\s*>`)
)

// renderModule returns a module's output for format. HTML output is wrapped
// in an identifying div; a module with no content shows a placeholder.
func (r *Renderer) renderModule(m api.Module, format string) (string, error) {
	body, err := r.moduleBody(m)
	if err != nil {
		return "", fmt.Errorf("failed to render module %d: %w", m.ID, err)
	}
	if format != tpl.DefaultFormat {
		return m.Content, nil
	}
	if strings.TrimSpace(body) == "" {
		body = "<p>" + html.EscapeString("<"+m.Name+" Placeholder>") + "</p>"
	}
	return `<div id="cx_module_` + strconv.FormatInt(m.ID, 10) + `" class="cx_module module_` +
		strings.ToLower(m.Name) + `">` + "\n" + body + "\n</div>", nil
}

func (r *Renderer) moduleBody(m api.Module) (string, error) {
	switch m.Type {
	case api.ModuleTypeMarkdown:
		out, err := md.ToHTML([]byte(m.Content))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(out), nil
	case api.ModuleTypeText:
		return html.EscapeString(m.Content), nil
	default:
		return m.Content, nil
	}
}

// formatRegion wraps region content for format. Only HTML gets a wrapper.
func formatRegion(name, content, format string) string {
	if format != tpl.DefaultFormat {
		return content
	}
	return `<div id="cx_region_` + name + `" class="cx_region">` + "\n" + content + "\n</div>"
}

// injectHead inserts lines immediately before the closing head tag.
func injectHead(content string, lines []string) string {
	if len(lines) == 0 {
		return content
	}
	loc := headClosePattern.FindStringIndex(content)
	if loc == nil {
		return content
	}
	idx := loc[0]
	return content[:idx] + strings.Join(lines, "\n") + "\n" + content[idx:]
}

// rewriteAssetURLs expands src and href values starting with "@" against the
// theme URL and values starting with "!" against the site root.
func rewriteAssetURLs(content, themeURL, rootURL string) string {
	content = themeAssetPattern.ReplaceAllString(content, `${1}="`+escapeReplacement(themeURL)+`${2}"`)
	return rootAssetPattern.ReplaceAllString(content, `${1}="`+escapeReplacement(rootURL)+`${2}"`)
}

func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

// ToMarkdown converts rendered HTML to Markdown. Tokens left in the content
// collapse to their inline text.
func ToMarkdown(htmlContent string) (string, error) {
	out, err := md.FromHTMLWithOptions(htmlContent, md.ConvertOptions{CleanTokens: true})
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	return out, nil
}
