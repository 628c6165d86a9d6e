package page

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/pkg/render"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

type renderOptions struct {
	commonOptions
	format   string
	markdown bool
	file     string
	web      bool
}

// NewCmdRender creates the page render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:     "render <url>",
		Aliases: []string{"view"},
		Short:   "Render a page",
		Long: `Render a page through its theme template and print the result.

The page's modules fill the template regions and its fields fill the tags.
Regions without modules keep their inline default content.`,
		Example: `  # Render the homepage
  cx page render /

  # Render as markdown
  cx page render /about-us/ --markdown

  # Render the JSON template variant to a file
  cx page render /about-us/ --format json --file about.json

  # Open the page on the local server in a browser
  cx page render /about-us/ --web`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.PageURLs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer pages.Close()

			if opts.web {
				return openBrowser(pageAddress(opts.cfg.ListenAddr, args[0]))
			}

			r := cmdutil.NewRenderer(opts.cfg, pages, cmdutil.Logger(opts.cfg))
			return runRender(cmdutil.Context(cmd), args[0], opts, r)
		},
	}

	opts.addRemoteFlag(cmd)
	cmd.Flags().StringVar(&opts.format, "format", tpl.DefaultFormat, "Template format")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Convert the rendered HTML to markdown")
	cmd.Flags().StringVar(&opts.file, "file", "", "Write the result to a file instead of stdout")
	cmd.Flags().BoolVarP(&opts.web, "web", "w", false, "Open the page on the local server in a browser")

	return cmd
}

// PageRenderer renders the page at a URL.
type PageRenderer interface {
	RenderURL(ctx context.Context, url, format string) (*render.Result, error)
}

func runRender(ctx context.Context, url string, opts *renderOptions, r PageRenderer) error {
	if opts.markdown && opts.format != tpl.DefaultFormat {
		return fmt.Errorf("--markdown requires the %s format", tpl.DefaultFormat)
	}

	res, err := r.RenderURL(ctx, url, opts.format)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", url, err)
	}

	content := res.Content
	if opts.markdown {
		if content, err = render.ToMarkdown(content); err != nil {
			return fmt.Errorf("failed to convert to markdown: %w", err)
		}
	}

	if opts.errOut != nil {
		for _, region := range res.Unplaced {
			fmt.Fprintf(opts.errOut, "! Region %q has modules but is not in template %s/%s\n", region, res.Theme, res.Template)
		}
	}

	if opts.file != "" {
		if err := atomic.WriteFile(opts.file, strings.NewReader(content)); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.file, err)
		}
		return nil
	}

	_, err = fmt.Fprintln(opts.out, content)
	return err
}

// pageAddress returns the browser URL of a page on the local server.
func pageAddress(listenAddr, url string) string {
	return "http://" + listenAddr + api.FormatPageURL(url)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
