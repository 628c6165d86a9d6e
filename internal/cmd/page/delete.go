package page

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

type deleteOptions struct {
	commonOptions
	force bool
	stdin io.Reader // injectable for testing
}

// NewCmdDelete creates the page delete command.
func NewCmdDelete() *cobra.Command {
	opts := &deleteOptions{}

	cmd := &cobra.Command{
		Use:   "delete <url>",
		Short: "Delete a page",
		Long:  `Delete a page and the modules placed on it.`,
		Example: `  # Delete a page
  cx page delete /about-us/

  # Delete without confirmation
  cx page delete /about-us/ --force`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.PageURLs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer pages.Close()
			opts.stdin = os.Stdin
			return runDelete(cmdutil.Context(cmd), args[0], opts, pages)
		},
	}

	opts.addRemoteFlag(cmd)
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func runDelete(ctx context.Context, url string, opts *deleteOptions, pages cmdutil.Pages) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	// Get page info first to show what we're deleting
	page, err := pages.GetPageByURL(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to get page: %w", err)
	}

	if !opts.force {
		fmt.Fprintf(opts.out, "About to delete page: %s (URL: %s)\n", page.Title, page.URL)
		fmt.Fprint(opts.out, "Are you sure? [y/N]: ")

		scanner := bufio.NewScanner(opts.stdin)
		var confirm string
		if scanner.Scan() {
			confirm = scanner.Text()
		}

		if confirm != "y" && confirm != "Y" {
			fmt.Fprintln(opts.out, "Deletion cancelled.")
			return nil
		}
	}

	if err := pages.DeletePage(ctx, page.ID); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(map[string]string{
			"status":  "deleted",
			"page_id": strconv.FormatInt(page.ID, 10),
			"url":     page.URL,
			"title":   page.Title,
		})
	}

	renderer.Success(fmt.Sprintf("Deleted page: %s (URL: %s)", page.Title, page.URL))

	return nil
}
