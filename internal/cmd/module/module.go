// Package module provides commands for the content modules placed in page
// regions.
package module

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/config"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

// NewCmdModule creates the module command.
func NewCmdModule() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "module",
		Aliases: []string{"modules", "mod"},
		Short:   "Manage page modules",
		Long: `Commands for listing, adding, and deleting the content modules that fill
template regions. Modules without a page belong to the site and appear in
global regions of every page.`,
	}

	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdAdd())
	cmd.AddCommand(NewCmdDelete())

	return cmd
}

type commonOptions struct {
	remote bool
	global cmdutil.GlobalOptions
	cfg    *config.Config
	out    io.Writer // injectable for testing
}

func (o *commonOptions) addRemoteFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.remote, "remote", false, "Use the remote CMS instead of the local database")
}

func (o *commonOptions) setup(cmd *cobra.Command) (cmdutil.Pages, error) {
	o.global = cmdutil.Globals(cmd)
	o.out = os.Stdout

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
