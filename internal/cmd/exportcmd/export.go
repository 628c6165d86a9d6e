// Package exportcmd provides the export command, which writes every page of
// the site as static files.
package exportcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/export"
	"github.com/open-cli-collective/cx-cli/internal/view"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

type exportOptions struct {
	export.Options
	remote bool
	out    io.Writer // injectable for testing
}

// NewCmdExport creates the export command.
func NewCmdExport() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Render every page to a directory",
		Long: `Render every visible page of the site and write it to DIR/URL/index.FORMAT,
ready for static hosting. Pages render concurrently; the first failure stops
the export.`,
		Example: `  # Export the site as HTML
  cx export ./public

  # Export markdown, including hidden pages
  cx export ./docs --markdown --include-hidden

  # Export the JSON variant from the remote CMS
  cx export ./data --format json --remote`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := cmdutil.Globals(cmd)
			cfg, err := cmdutil.LoadConfig(g)
			if err != nil {
				return err
			}
			renderer, err := g.View(cfg)
			if err != nil {
				return err
			}
			opts.out = os.Stdout
			renderer.SetWriter(opts.out)

			pages, err := cmdutil.OpenPages(cmdutil.Context(cmd), cfg, opts.remote)
			if err != nil {
				return err
			}
			defer pages.Close()

			logger := cmdutil.Logger(cfg)
			return runExport(cmdutil.Context(cmd), args[0], opts, pages, cmdutil.NewRenderer(cfg, pages, logger), renderer, logger)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", tpl.DefaultFormat, "Template format")
	cmd.Flags().BoolVar(&opts.Markdown, "markdown", false, "Convert rendered HTML to markdown (index.md)")
	cmd.Flags().BoolVar(&opts.IncludeHidden, "include-hidden", false, "Also export hidden pages")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", export.DefaultConcurrency, "Pages rendered at once")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Export from the remote CMS instead of the local database")

	return cmd
}

// PageLister lists every page of the site.
type PageLister interface {
	ListPages(ctx context.Context) ([]api.Page, error)
}

func runExport(ctx context.Context, dir string, opts *exportOptions, pages PageLister, r export.PageRenderer, renderer *view.Renderer, logger *slog.Logger) error {
	all, err := pages.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	summary, err := export.Export(ctx, r, all, dir, opts.Options, logger)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(map[string]any{
			"directory": dir,
			"written":   summary.Written,
			"skipped":   summary.Skipped,
		})
	}

	renderer.Success(fmt.Sprintf("Exported %d pages to %s", len(summary.Written), dir))
	if len(summary.Skipped) > 0 {
		renderer.RenderKeyValue("Skipped hidden", fmt.Sprintf("%d (use --include-hidden to export them)", len(summary.Skipped)))
	}

	return nil
}
