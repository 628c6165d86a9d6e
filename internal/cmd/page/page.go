// Package page provides page-related commands.
package page

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/config"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

// NewCmdPage creates the page command.
func NewCmdPage() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "page",
		Aliases: []string{"pages"},
		Short:   "Manage site pages",
		Long:    `Commands for creating, listing, rendering, and deleting site pages.`,
	}

	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdRender())
	cmd.AddCommand(NewCmdCreate())
	cmd.AddCommand(NewCmdDelete())

	return cmd
}

// commonOptions are shared by page subcommands.
type commonOptions struct {
	remote bool
	global cmdutil.GlobalOptions
	cfg    *config.Config
	out    io.Writer // injectable for testing
	errOut io.Writer
}

func (o *commonOptions) addRemoteFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.remote, "remote", false, "Use the remote CMS instead of the local database")
}

// setup loads the configuration and opens the page source.
func (o *commonOptions) setup(cmd *cobra.Command) (cmdutil.Pages, error) {
	o.global = cmdutil.Globals(cmd)
	o.out = os.Stdout
	o.errOut = os.Stderr

	cfg, err := cmdutil.LoadConfig(o.global)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cmdutil.OpenPages(cmdutil.Context(cmd), cfg, o.remote)
}

func (o *commonOptions) renderer() (*view.Renderer, error) {
	r, err := o.global.View(o.cfg)
	if err != nil {
		return nil, err
	}
	if o.out != nil {
		r.SetWriter(o.out)
	}
	return r, nil
}
