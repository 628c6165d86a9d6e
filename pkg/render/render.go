// Package render composes a page from its template, its modules and its
// record data.
//
// Each call to Render loads and owns a fresh tpl.Template, so a Renderer can
// be shared between goroutines as long as its Source can.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// GlobalRegionType is the region type whose modules belong to the site rather
// than to a single page.
const GlobalRegionType = "global"

var (
	// ErrPageNotFound is returned when no page exists at the requested URL.
	ErrPageNotFound = errors.New("page not found")
	// ErrUnsupportedFormat is returned when the page template has no variant
	// for the requested output format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Source supplies page records and their modules.
type Source interface {
	GetPageByURL(ctx context.Context, url string) (*api.Page, error)
	ListModules(ctx context.Context, pageID int64, globalRegions []string) ([]api.Module, error)
}

// PageCreator is implemented by sources that can create pages. When the
// source implements it and AutoCreateHomepage is set, a missing homepage is
// created on first render.
type PageCreator interface {
	CreatePage(ctx context.Context, page *api.Page) error
}

// Options configures a Renderer.
type Options struct {
	DefaultTheme    string // used when a page has no theme
	DefaultTemplate string // used when a page has no template
	ThemesURL       string // public URL of the themes directory, for "@" asset paths
	RootURL         string // public site root, for "!" asset paths
	AssetsURL       string // public URL of shared assets; adds the module stylesheet when set
	Data            map[string]string
	// AutoCreateHomepage creates a "Home" page at "/" when it is missing.
	AutoCreateHomepage bool
}

// Result is a rendered page.
type Result struct {
	Page     *api.Page
	Theme    string
	Template string
	Format   string
	Content  string
	// Unplaced lists regions that have modules but do not exist in the template.
	Unplaced []string
}

// Renderer renders pages from a Source using templates under a themes directory.
type Renderer struct {
	source Source
	themes fs.FS
	opts   Options
	logger *slog.Logger
}

// New creates a Renderer. themes holds one directory per theme, each with
// NAME.tpl.FORMAT template files.
func New(source Source, themes fs.FS, opts Options, logger *slog.Logger) *Renderer {
	if opts.DefaultTheme == "" {
		opts.DefaultTheme = "default"
	}
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = "index"
	}
	if opts.ThemesURL == "" {
		opts.ThemesURL = "/themes/"
	}
	if opts.RootURL == "" {
		opts.RootURL = "/"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		source: source,
		themes: themes,
		opts:   opts,
		logger: logger,
	}
}

// Loader returns the template loader for a theme.
func (r *Renderer) Loader(theme string) (*tpl.Loader, error) {
	if theme == "" {
		theme = r.opts.DefaultTheme
	}
	sub, err := fs.Sub(r.themes, theme)
	if err != nil {
		return nil, fmt.Errorf("invalid theme %q: %w", theme, err)
	}
	return tpl.NewLoader(sub), nil
}

// RenderURL looks up the page at url and renders it.
func (r *Renderer) RenderURL(ctx context.Context, url, format string) (*Result, error) {
	url = api.FormatPageURL(url)
	page, err := r.source.GetPageByURL(ctx, url)
	if err != nil {
		if !api.IsNotFound(err) {
			return nil, fmt.Errorf("failed to get page: %w", err)
		}
		page, err = r.createHomepage(ctx, url)
		if err != nil {
			return nil, err
		}
	}
	return r.Render(ctx, page, format)
}

func (r *Renderer) createHomepage(ctx context.Context, url string) (*api.Page, error) {
	creator, ok := r.source.(PageCreator)
	if url != "/" || !r.opts.AutoCreateHomepage || !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, url)
	}
	page := &api.Page{Title: "Home", URL: "/", Visibility: api.VisibilityVisible}
	if err := creator.CreatePage(ctx, page); err != nil {
		return nil, fmt.Errorf("unable to create homepage at %s: %w", url, err)
	}
	r.logger.Info("Created missing homepage", "page_id", page.ID)
	return page, nil
}

// Render composes page into its template: region defaults, module output,
// page data tags, then a clean pass. HTML output additionally gets head
// assets and rewritten asset URLs.
func (r *Renderer) Render(ctx context.Context, page *api.Page, format string) (*Result, error) {
	if format == "" {
		format = tpl.DefaultFormat
	}
	res := &Result{
		Page:     page,
		Theme:    firstNonEmpty(page.Theme, r.opts.DefaultTheme),
		Template: firstNonEmpty(page.Template, r.opts.DefaultTemplate),
		Format:   format,
	}

	loader, err := r.Loader(res.Theme)
	if err != nil {
		return nil, err
	}
	tmpl, err := loader.Load(res.Template, format)
	if err != nil {
		if errors.Is(err, tpl.ErrTemplateNotFound) && format != tpl.DefaultFormat {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
		}
		return nil, err
	}

	modules, err := r.source.ListModules(ctx, page.ID, tmpl.RegionsType(GlobalRegionType))
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	// Tags are filled in a stable order so overlapping markup resolves the
	// same way every time
	data := page.Data()
	for k, v := range r.opts.Data {
		data[k] = v
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fillTags := func(t *tpl.Template) {
		for _, k := range keys {
			t.ReplaceTag(k, data[k])
		}
	}

	// Module output grouped by region, falling back to the region's inline default
	regions := tmpl.Regions()
	regionContent := make(map[string][]string)
	for _, m := range modules {
		out, err := r.renderModule(m, format)
		if err != nil {
			return nil, err
		}
		regionContent[m.Region] = append(regionContent[m.Region], out)
	}

	for _, name := range tmpl.RegionNames() {
		var content string
		if outputs, ok := regionContent[name]; ok {
			content = strings.Join(outputs, "\n")
		} else {
			// Tokens inside a region body are not parsed with the page template
			def := tpl.New(regions[name].Content)
			fillTags(def)
			content = def.Clean()
		}
		tmpl.ReplaceRegion(name, formatRegion(name, content, format))
	}
	for name := range regionContent {
		if _, ok := regions[name]; !ok {
			res.Unplaced = append(res.Unplaced, name)
		}
	}
	sort.Strings(res.Unplaced)
	if len(res.Unplaced) > 0 {
		r.logger.Debug("Modules in regions missing from template",
			"page", page.URL, "template", res.Template, "regions", res.Unplaced)
	}

	fillTags(tmpl)
	content := tmpl.Clean()

	if format == tpl.DefaultFormat {
		content = injectHead(content, r.headLinks())
		content = rewriteAssetURLs(content, r.opts.ThemesURL+res.Theme+"/", r.opts.RootURL)
	}

	res.Content = content
	return res, nil
}

func (r *Renderer) headLinks() []string {
	if r.opts.AssetsURL == "" {
		return nil
	}
	return []string{
		`<link type="text/css" href="` + r.opts.AssetsURL + `styles/cx_modules.css" rel="stylesheet" />`,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
