// Package export writes rendered pages to a directory tree for static hosting.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/pkg/render"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// DefaultConcurrency is the number of pages rendered at once when unset.
const DefaultConcurrency = 4

// PageRenderer renders a page record.
type PageRenderer interface {
	Render(ctx context.Context, page *api.Page, format string) (*render.Result, error)
}

// Options configures an export.
type Options struct {
	Format        string // template format, default html
	Markdown      bool   // convert rendered HTML to markdown and write index.md
	IncludeHidden bool
	Concurrency   int
}

// Summary reports what an export wrote. Paths are relative to the output
// directory and sorted.
type Summary struct {
	Written []string
	Skipped []string
}

// Export renders pages concurrently and writes each to
// outDir/URL/index.FORMAT. The first render or write error cancels the rest.
func Export(ctx context.Context, r PageRenderer, pages []api.Page, outDir string, opts Options, logger *slog.Logger) (*Summary, error) {
	if opts.Format == "" {
		opts.Format = tpl.DefaultFormat
	}
	if opts.Markdown && opts.Format != tpl.DefaultFormat {
		return nil, fmt.Errorf("markdown export requires the %s format", tpl.DefaultFormat)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	ext := opts.Format
	if opts.Markdown {
		ext = "md"
	}

	type job struct {
		page *api.Page
		rel  string
	}

	// Every path is checked before any page is rendered, so a bad URL fails
	// the export without writing anything.
	var (
		jobs    []job
		summary Summary
	)
	for i := range pages {
		page := &pages[i]
		if !page.IsVisible() && !opts.IncludeHidden {
			logger.Debug("Skipping hidden page", "url", page.URL)
			summary.Skipped = append(summary.Skipped, page.URL)
			continue
		}
		rel, err := PagePath(page.URL, ext)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{page: page, rel: rel})
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, j := range jobs {
		page, rel := j.page, j.rel
		g.Go(func() error {
			res, err := r.Render(ctx, page, opts.Format)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", page.URL, err)
			}
			content := res.Content
			if opts.Markdown {
				if content, err = render.ToMarkdown(content); err != nil {
					return fmt.Errorf("failed to convert %s: %w", page.URL, err)
				}
			}

			if err := writeFile(filepath.Join(outDir, rel), content); err != nil {
				return err
			}
			logger.Info("Exported page", "url", page.URL, "path", rel)

			mu.Lock()
			summary.Written = append(summary.Written, rel)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(summary.Written)
	sort.Strings(summary.Skipped)
	return &summary, nil
}

// PagePath returns the output path of a page URL relative to the export
// directory, e.g. "/about/" becomes "about/index.html".
func PagePath(url, ext string) (string, error) {
	trimmed := strings.Trim(api.FormatPageURL(url), "/")
	rel := filepath.Join(filepath.FromSlash(trimmed), "index."+ext)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("page url %q escapes the export directory", url)
	}
	return rel, nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
