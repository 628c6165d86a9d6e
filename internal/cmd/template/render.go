package template

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

type renderOptions struct {
	commonOptions
	tags    []string
	regions []string
	noClean bool
}

// NewCmdRender creates the template render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render a template with tag and region values",
		Long: `Fill a template's tags and regions with the given values and print the result.

Tags and regions without a value fall back to their inline default content.
With --no-clean, unreplaced tokens are left in the output.`,
		Example: `  # Fill the title tag and main region
  cx template render index --tag title="Hello" --region main="<p>Body</p>"

  # Keep unreplaced tokens
  cx template render index --tag title=Hello --no-clean`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.Templates,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			return runRender(args[0], opts, loader)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringArrayVar(&opts.tags, "tag", nil, "Tag value as KEY=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&opts.regions, "region", nil, "Region value as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&opts.noClean, "no-clean", false, "Leave unreplaced tokens in the output")

	return cmd
}

func runRender(name string, opts *renderOptions, loader *tpl.Loader) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	tags, err := parsePairs(opts.tags)
	if err != nil {
		return err
	}
	regions, err := parsePairs(opts.regions)
	if err != nil {
		return err
	}

	t, err := loader.Load(name, opts.format)
	if err != nil {
		return err
	}

	// Regions first; a region body may contain markup that matches a tag
	for _, key := range sortedKeys(regions) {
		if !t.ReplaceRegion(key, regions[key]) {
			opts.warn(fmt.Sprintf("Template %s has no region %q", name, key))
		}
	}
	for _, key := range sortedKeys(tags) {
		if !t.ReplaceTag(key, tags[key]) {
			opts.warn(fmt.Sprintf("Template %s has no tag %q", name, key))
		}
	}

	if opts.noClean {
		renderer.RenderText(t.String())
	} else {
		renderer.RenderText(t.Clean())
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
