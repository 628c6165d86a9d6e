package template

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/internal/view"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

type tokensOptions struct {
	commonOptions
	kind string
}

// tokenOutput is the JSON form of a token.
type tokenOutput struct {
	Kind       string            `json:"kind"`
	Key        string            `json:"key"`
	Type       string            `json:"type,omitempty"`
	Attributes map[string]string `json:"attributes"`
	Content    string            `json:"content"`
	Position   int               `json:"position"`
}

// NewCmdTokens creates the template tokens command.
func NewCmdTokens() *cobra.Command {
	opts := &tokensOptions{}

	cmd := &cobra.Command{
		Use:   "tokens <name>",
		Short: "Show the tags and regions of a template",
		Long: `Parse a template and show its tokens in document order.

Tags and regions are keyed by their name attribute, or by their position
among unnamed tokens of the same kind.`,
		Example: `  # Show tokens of the index template
  cx template tokens index

  # Only regions, as JSON
  cx template tokens index --kind region -o json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.Templates,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			return runTokens(args[0], opts, loader)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "Only show tokens of this kind (tag, region)")

	return cmd
}

func runTokens(name string, opts *tokensOptions, loader *tpl.Loader) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	t, err := loader.Load(name, opts.format)
	if err != nil {
		return err
	}

	var tokens []tpl.Token
	for _, token := range t.Tokens() {
		if opts.kind == "" || token.Kind == opts.kind {
			tokens = append(tokens, token)
		}
	}

	if renderer.Format() == view.FormatJSON {
		out := make([]tokenOutput, 0, len(tokens))
		for _, token := range tokens {
			out = append(out, toOutput(token))
		}
		return renderer.RenderJSON(out)
	}

	if len(tokens) == 0 {
		renderer.RenderText("No tokens found.")
		return nil
	}

	headers := []string{"KIND", "KEY", "TYPE", "POSITION", "DEFAULT"}
	var rows [][]string
	for _, token := range tokens {
		o := toOutput(token)
		rows = append(rows, []string{
			o.Kind,
			o.Key,
			o.Type,
			strconv.Itoa(o.Position),
			view.Truncate(strings.Join(strings.Fields(o.Content), " "), 40),
		})
	}
	renderer.RenderTable(headers, rows)
	return nil
}

func toOutput(token tpl.Token) tokenOutput {
	o := tokenOutput{
		Kind:       token.Kind,
		Key:        token.Key,
		Attributes: token.Attributes,
		Content:    token.Content,
		Position:   token.Position,
	}
	if token.Kind == tpl.KindRegion {
		o.Type = token.RegionType()
	}
	return o
}
