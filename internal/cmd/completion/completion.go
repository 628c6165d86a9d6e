// Package completion provides shell completion generation commands and the
// dynamic completers for template names, themes and page URLs.
package completion

import (
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	short   string
	long    string
	example string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name:  "bash",
		short: "Generate bash completion script",
		long: `To load completions in your current shell session:

  source <(cx completion bash)

To load completions for every new session:

  # Linux
  cx completion bash > /etc/bash_completion.d/cx

  # macOS (requires bash-completion)
  cx completion bash > $(brew --prefix)/etc/bash_completion.d/cx`,
		example: `  # Install permanently (Linux)
  cx completion bash | sudo tee /etc/bash_completion.d/cx > /dev/null`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletion(w) },
	},
	{
		name:  "zsh",
		short: "Generate zsh completion script",
		long: `To load completions in your current shell session:

  source <(cx completion zsh)

To load completions for every new session, make sure compinit runs in
~/.zshrc and add the script to your fpath:

  cx completion zsh > "${fpath[1]}/_cx"`,
		example: `  # Install permanently
  mkdir -p ~/.zsh/completions
  cx completion zsh > ~/.zsh/completions/_cx`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	{
		name:  "fish",
		short: "Generate fish completion script",
		long: `To load completions in your current shell session:

  cx completion fish | source

To load completions for every new session:

  cx completion fish > ~/.config/fish/completions/cx.fish`,
		example: `  # Install permanently
  cx completion fish > ~/.config/fish/completions/cx.fish`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	{
		name:  "powershell",
		short: "Generate PowerShell completion script",
		long: `To load completions in your current shell session:

  cx completion powershell | Out-String | Invoke-Expression

To load completions for every new session, add the output to your
PowerShell profile ($PROFILE).`,
		example: `  # Install permanently
  cx completion powershell >> $PROFILE`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cx.

These scripts enable tab-completion for commands, flags, template names,
themes and page URLs. See each sub-command's help for installation
instructions.`,
	}

	for _, s := range shells {
		cmd.AddCommand(newShellCmd(s))
	}

	return cmd
}

func newShellCmd(s shell) *cobra.Command {
	return &cobra.Command{
		Use:                   s.name,
		Short:                 s.short,
		Long:                  s.short + " for cx.\n\n" + s.long,
		Example:               s.example,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
