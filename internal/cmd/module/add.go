package module

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

type addOptions struct {
	commonOptions
	page       string
	region     string
	name       string
	moduleType string
	content    string
	file       string
	editor     bool
	ordering   int
	stdin      io.Reader // set when stdin is piped
}

// NewCmdAdd creates the module add command.
func NewCmdAdd() *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a module to a page region",
		Long: `Add a content module to a page region, or to the site when --page is omitted.

Content can be provided via:
- --content flag
- --file flag to read from a file
- Standard input (pipe content)
- Interactive editor (with --editor flag)

Module types: html (default), markdown, text.`,
		Example: `  # Add HTML to the main region of a page
  cx module add --page /about/ --region main --name Intro --content "<p>Hello</p>"

  # Add a markdown module from a file
  cx module add -p /about/ -r main -n Body --type markdown --file body.md

  # Add a site-wide footer module from stdin
  echo "(c) Example" | cx module add -r footer -n Copyright --type text`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pages, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer pages.Close()

			if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
				opts.stdin = os.Stdin
			}
			return runAdd(cmdutil.Context(cmd), opts, pages)
		},
	}

	opts.addRemoteFlag(cmd)
	cmd.Flags().StringVarP(&opts.page, "page", "p", "", "Page URL (default: a site module)")
	cmd.Flags().StringVarP(&opts.region, "region", "r", "", "Template region (required)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Module name (required)")
	cmd.Flags().StringVar(&opts.moduleType, "type", api.ModuleTypeHTML, "Content type: html, markdown, text")
	cmd.Flags().StringVar(&opts.content, "content", "", "Module content")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read content from file")
	cmd.Flags().BoolVar(&opts.editor, "editor", false, "Open editor for content")
	cmd.Flags().IntVar(&opts.ordering, "ordering", 0, "Position within the region")

	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.RegisterFlagCompletionFunc("page", completion.PageURLs)

	return cmd
}

func runAdd(ctx context.Context, opts *addOptions, pages cmdutil.Pages) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	switch opts.moduleType {
	case api.ModuleTypeHTML, api.ModuleTypeMarkdown, api.ModuleTypeText:
	default:
		return fmt.Errorf("invalid module type %q (valid: html, markdown, text)", opts.moduleType)
	}

	content, err := getContent(opts)
	if err != nil {
		return err
	}

	module := &api.Module{
		Region:   opts.region,
		Name:     opts.name,
		Type:     opts.moduleType,
		Content:  content,
		Ordering: opts.ordering,
	}

	if opts.page != "" {
		page, err := pages.GetPageByURL(ctx, opts.page)
		if err != nil {
			return fmt.Errorf("failed to get page: %w", err)
		}
		module.PageID = page.ID
	}

	if err := pages.AddModule(ctx, module); err != nil {
		return fmt.Errorf("failed to add module: %w", err)
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(module)
	}

	scope := "site"
	if opts.page != "" {
		scope = api.FormatPageURL(opts.page)
	}
	renderer.Success(fmt.Sprintf("Added module: %s", module.Name))
	renderer.RenderKeyValue("ID", strconv.FormatInt(module.ID, 10))
	renderer.RenderKeyValue("Region", module.Region)
	renderer.RenderKeyValue("Page", scope)

	return nil
}

func getContent(opts *addOptions) (string, error) {
	if opts.content != "" {
		return opts.content, nil
	}

	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	if opts.stdin != nil {
		data, err := io.ReadAll(opts.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	if opts.editor {
		return openEditor(opts.moduleType)
	}

	// An empty module renders as a placeholder
	return "", nil
}

func openEditor(moduleType string) (string, error) {
	ext := ".html"
	switch moduleType {
	case api.ModuleTypeMarkdown:
		ext = ".md"
	case api.ModuleTypeText:
		ext = ".txt"
	}

	tmpfile, err := os.CreateTemp("", "cx-module-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpfile.Name())
	tmpfile.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}

	cmd := exec.Command(editor, tmpfile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor failed: %w", err)
	}

	data, err := os.ReadFile(tmpfile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("no content provided")
	}

	return content, nil
}
