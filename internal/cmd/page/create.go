package page

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

type createOptions struct {
	commonOptions
	title       string
	url         string
	parent      string
	theme       string
	template    string
	keywords    string
	description string
	ordering    int
	hidden      bool
}

// NewCmdCreate creates the page create command.
func NewCmdCreate() *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new page",
		Long: `Create a new page on the configured site.

The page URL defaults to a slug of the title. Theme and template default to
the site's default_theme and default_template when rendered. Page content is
added afterwards with 'cx module add'.`,
		Example: `  # Create a page at /about-us/
  cx page create --title "About Us"

  # Create a child page with its own template
  cx page create -t "Team" --url /about-us/team/ --parent /about-us/ --template wide

  # Create a hidden page
  cx page create -t "Draft" --hidden`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer pages.Close()
			return runCreate(cmdutil.Context(cmd), opts, pages)
		},
	}

	opts.addRemoteFlag(cmd)
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Page title (required)")
	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "Page URL (default: slug of the title)")
	cmd.Flags().StringVarP(&opts.parent, "parent", "p", "", "Parent page URL")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "Theme name")
	cmd.Flags().StringVar(&opts.template, "template", "", "Template name")
	cmd.Flags().StringVar(&opts.keywords, "keywords", "", "Meta keywords")
	cmd.Flags().StringVar(&opts.description, "description", "", "Meta description")
	cmd.Flags().IntVar(&opts.ordering, "ordering", 0, "Position among sibling pages")
	cmd.Flags().BoolVar(&opts.hidden, "hidden", false, "Hide the page from navigation and exports")

	cmd.MarkFlagRequired("title")
	_ = cmd.RegisterFlagCompletionFunc("parent", completion.PageURLs)
	_ = cmd.RegisterFlagCompletionFunc("theme", completion.Themes)

	return cmd
}

func runCreate(ctx context.Context, opts *createOptions, pages cmdutil.Pages) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	if strings.TrimSpace(opts.title) == "" {
		return fmt.Errorf("title is required")
	}

	url := opts.url
	if url == "" {
		url = Slug(opts.title)
		if url == "" {
			return fmt.Errorf("cannot derive a URL from title %q: use --url", opts.title)
		}
	}

	page := &api.Page{
		Title:           opts.title,
		URL:             api.FormatPageURL(url),
		Theme:           opts.theme,
		Template:        opts.template,
		MetaKeywords:    opts.keywords,
		MetaDescription: opts.description,
		Ordering:        opts.ordering,
		Visibility:      api.VisibilityVisible,
	}
	if opts.hidden {
		page.Visibility = api.VisibilityHidden
	}

	if opts.parent != "" {
		parent, err := pages.GetPageByURL(ctx, opts.parent)
		if err != nil {
			return fmt.Errorf("failed to find parent page %s: %w", opts.parent, err)
		}
		page.ParentID = parent.ID
	}

	if err := pages.CreatePage(ctx, page); err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(page)
	}

	renderer.Success(fmt.Sprintf("Created page: %s", page.Title))
	renderer.RenderKeyValue("ID", strconv.FormatInt(page.ID, 10))
	renderer.RenderKeyValue("URL", page.URL)

	return nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a title into a URL path segment: "About Us!" becomes "about-us".
func Slug(title string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(title), "-"), "-")
}
