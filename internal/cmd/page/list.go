package page

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

type listOptions struct {
	commonOptions
	limit int
}

// NewCmdList creates the page list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List site pages",
		Long:    `List the pages of the configured site, ordered by parent and ordering.`,
		Example: `  # List pages
  cx page list

  # List pages on the remote CMS
  cx page list --remote

  # Output as JSON
  cx page list -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer pages.Close()
			return runList(cmdutil.Context(cmd), opts, pages)
		},
	}

	opts.addRemoteFlag(cmd)
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "Maximum number of pages to show (0 for all)")

	return cmd
}

func runList(ctx context.Context, opts *listOptions, pages cmdutil.Pages) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	result, err := pages.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if len(result) == 0 {
		renderer.RenderText("No pages found.")
		return nil
	}

	total := len(result)
	if opts.limit > 0 && total > opts.limit {
		result = result[:opts.limit]
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(result)
	}

	renderer.RenderTable(pageHeaders, pageRows(result))

	if len(result) < total {
		renderer.RenderText(fmt.Sprintf("\n(showing first %d of %d pages, use --limit to see more)", len(result), total))
	}

	return nil
}

var pageHeaders = []string{"ID", "TITLE", "URL", "TEMPLATE", "VISIBLE"}

func pageRows(pages []api.Page) [][]string {
	rows := make([][]string, 0, len(pages))
	for _, page := range pages {
		visible := "no"
		if page.IsVisible() {
			visible = "yes"
		}
		template := page.Template
		if page.Theme != "" {
			template = page.Theme + "/" + template
		}
		rows = append(rows, []string{
			strconv.FormatInt(page.ID, 10),
			view.Truncate(page.Title, 60),
			page.URL,
			template,
			visible,
		})
	}
	return rows
}
