package template

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

type listOptions struct {
	commonOptions
}

// NewCmdList creates the template list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates in a theme",
		Long:    `List the templates of a theme that exist in the given format.`,
		Example: `  # List templates in the default theme
  cx template list

  # List JSON templates of another theme
  cx template list --theme dark --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			return runList(opts, loader)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runList(opts *listOptions, loader *tpl.Loader) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	names, err := loader.List(opts.format)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	if len(names) == 0 {
		renderer.RenderText(fmt.Sprintf("No %s templates found.", opts.format))
		return nil
	}

	headers := []string{"NAME", "FILE", "TAGS", "REGIONS"}
	var rows [][]string
	for _, name := range names {
		t, err := loader.Load(name, opts.format)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			name,
			tpl.Filename(name, opts.format),
			fmt.Sprintf("%d", len(t.TagNames())),
			fmt.Sprintf("%d", len(t.RegionNames())),
		})
	}

	renderer.RenderTable(headers, rows)
	return nil
}
