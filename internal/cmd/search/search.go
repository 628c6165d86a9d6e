// Package search provides the search command for finding site pages.
package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

type searchOptions struct {
	query       string // Positional arg: title or URL fragment
	template    string // Filter by template
	visibleOnly bool
	limit       int
	remote      bool

	renderer *view.Renderer
	errOut   io.Writer
}

// NewCmdSearch creates the search command.
func NewCmdSearch() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search site pages",
		Long: `Search for pages whose title or URL contains the query, case-insensitively.

On the remote CMS only titles are matched.`,
		Example: `  # Find pages about the team
  cx search team

  # Only visible pages using the wide template
  cx search news --template wide --visible

  # Search the remote CMS
  cx search "release notes" --remote

  # Output as JSON for scripting
  cx search about -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.query = args[0]
			g := cmdutil.Globals(cmd)
			cfg, err := cmdutil.LoadConfig(g)
			if err != nil {
				return err
			}
			if opts.renderer, err = g.View(cfg); err != nil {
				return err
			}
			opts.errOut = os.Stderr

			pages, err := cmdutil.OpenPages(cmdutil.Context(cmd), cfg, opts.remote)
			if err != nil {
				return err
			}
			defer pages.Close()
			return runSearch(cmdutil.Context(cmd), opts, pages)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Filter by template name")
	cmd.Flags().BoolVar(&opts.visibleOnly, "visible", false, "Only show visible pages")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 25, "Maximum number of results")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Search the remote CMS instead of the local database")

	return cmd
}

// Searcher finds pages by a query string.
type Searcher interface {
	SearchPages(ctx context.Context, query string, limit int) ([]api.Page, error)
}

func runSearch(ctx context.Context, opts *searchOptions, s Searcher) error {
	renderer := opts.renderer

	if opts.query == "" {
		return fmt.Errorf("search requires a query")
	}

	if opts.limit < 0 {
		return fmt.Errorf("invalid limit: %d (must be >= 0)", opts.limit)
	}

	// Handle limit 0 - return empty
	if opts.limit == 0 {
		if renderer.Format() == view.FormatJSON {
			return renderer.RenderJSON([]api.Page{})
		}
		renderer.RenderText("No results.")
		return nil
	}

	// Filters apply after the query, so fetch one extra to detect truncation
	results, err := s.SearchPages(ctx, opts.query, opts.limit+1)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	hasMore := len(results) > opts.limit
	if hasMore {
		results = results[:opts.limit]
	}

	filtered := results[:0]
	for _, page := range results {
		if opts.template != "" && page.Template != opts.template {
			continue
		}
		if opts.visibleOnly && !page.IsVisible() {
			continue
		}
		filtered = append(filtered, page)
	}

	if renderer.Format() == view.FormatJSON {
		if filtered == nil {
			filtered = []api.Page{}
		}
		return renderer.RenderJSON(filtered)
	}

	if len(filtered) == 0 {
		renderer.RenderText("No results found.")
		return nil
	}

	headers := []string{"ID", "TITLE", "URL", "TEMPLATE"}
	rows := make([][]string, 0, len(filtered))
	for _, page := range filtered {
		rows = append(rows, []string{
			strconv.FormatInt(page.ID, 10),
			view.Truncate(page.Title, 50),
			view.Truncate(page.URL, 40),
			page.Template,
		})
	}
	renderer.RenderTable(headers, rows)

	if hasMore && opts.errOut != nil {
		fmt.Fprintf(opts.errOut, "\n(showing first %d results, use --limit to see more)\n", opts.limit)
	}

	return nil
}
