// Package template provides commands for inspecting and rendering theme
// templates.
package template

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/internal/view"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// NewCmdTemplate creates the template command.
func NewCmdTemplate() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates", "tpl"},
		Short:   "Inspect and render theme templates",
		Long:    `Commands for listing theme templates, showing their tags and regions, and rendering them with values.`,
	}

	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdTokens())
	cmd.AddCommand(NewCmdRender())

	return cmd
}

// commonOptions are shared by template subcommands.
type commonOptions struct {
	theme   string
	format  string
	output  string
	noColor bool
	out     io.Writer // injectable for testing
	errOut  io.Writer
}

func (o *commonOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.theme, "theme", "t", "", "Theme name (default: default_theme from config)")
	cmd.Flags().StringVarP(&o.format, "format", "f", tpl.DefaultFormat, "Template format")
	_ = cmd.RegisterFlagCompletionFunc("theme", completion.Themes)
}

// setup reads global flags and returns the theme's loader.
func (o *commonOptions) setup(cmd *cobra.Command) (*tpl.Loader, error) {
	g := cmdutil.Globals(cmd)
	o.output = g.Output
	o.noColor = g.NoColor
	o.out = os.Stdout
	o.errOut = os.Stderr

	cfg, err := cmdutil.LoadConfig(g)
	if err != nil {
		return nil, err
	}
	if o.output == "" {
		o.output = cfg.OutputFormat
	}
	return cmdutil.ThemeLoader(cfg, o.theme)
}

func (o *commonOptions) renderer() (*view.Renderer, error) {
	if err := view.ValidateFormat(o.output); err != nil {
		return nil, err
	}
	format := o.output
	if format == "" {
		format = string(view.FormatTable)
	}
	r := view.NewRenderer(view.Format(format), o.noColor)
	if o.out != nil {
		r.SetWriter(o.out)
	}
	return r, nil
}

// warn prints a warning to the error stream so it never mixes with output.
func (o *commonOptions) warn(msg string) {
	w := o.errOut
	if w == nil {
		w = io.Discard
	}
	r := view.NewRenderer(view.FormatTable, o.noColor)
	r.SetWriter(w)
	r.Warning(msg)
}

// parsePairs parses repeated KEY=VALUE flag values. Values may contain '='.
func parsePairs(values []string) (map[string]string, error) {
	pairs := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid value %q: expected KEY=VALUE", v)
		}
		pairs[key] = value
	}
	return pairs, nil
}
