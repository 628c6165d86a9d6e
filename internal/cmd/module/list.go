package module

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

type listOptions struct {
	commonOptions
	globalRegions []string
}

// NewCmdList creates the module list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list [page-url]",
		Aliases: []string{"ls"},
		Short:   "List modules",
		Long: `List the modules placed on a page, in render order.

Without a page URL, the site's global modules are listed.`,
		Example: `  # List a page's modules
  cx module list /about/

  # Include site modules shown in the page's footer region
  cx module list /about/ --global footer

  # List site modules
  cx module list`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.PageURLs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer pages.Close()

			var url string
			if len(args) > 0 {
				url = args[0]
			}
			return runList(cmdutil.Context(cmd), url, opts, pages)
		},
	}

	opts.addRemoteFlag(cmd)
	cmd.Flags().StringSliceVarP(&opts.globalRegions, "global", "g", nil, "Also list site modules in these regions")

	return cmd
}

func runList(ctx context.Context, url string, opts *listOptions, pages cmdutil.Pages) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	var pageID int64
	if url != "" {
		page, err := pages.GetPageByURL(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to get page: %w", err)
		}
		pageID = page.ID
	}

	modules, err := pages.ListModules(ctx, pageID, opts.globalRegions)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}

	if len(modules) == 0 {
		if url == "" {
			renderer.RenderText("No site modules found.")
		} else {
			renderer.RenderText(fmt.Sprintf("No modules found on page %s.", api.FormatPageURL(url)))
		}
		return nil
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(modules)
	}

	headers := []string{"ID", "REGION", "NAME", "TYPE", "SCOPE", "CONTENT"}
	rows := make([][]string, 0, len(modules))
	for _, m := range modules {
		scope := "page"
		if m.PageID == 0 {
			scope = "site"
		}
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Region,
			m.Name,
			m.Type,
			scope,
			view.Truncate(strings.Join(strings.Fields(m.Content), " "), 40),
		})
	}
	renderer.RenderTable(headers, rows)

	return nil
}
