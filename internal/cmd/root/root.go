// Package root provides the root command for the cx CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/completion"
	"github.com/open-cli-collective/cx-cli/internal/cmd/configcmd"
	"github.com/open-cli-collective/cx-cli/internal/cmd/exportcmd"
	initcmd "github.com/open-cli-collective/cx-cli/internal/cmd/init"
	"github.com/open-cli-collective/cx-cli/internal/cmd/module"
	"github.com/open-cli-collective/cx-cli/internal/cmd/page"
	"github.com/open-cli-collective/cx-cli/internal/cmd/search"
	"github.com/open-cli-collective/cx-cli/internal/cmd/serve"
	"github.com/open-cli-collective/cx-cli/internal/cmd/template"
	"github.com/open-cli-collective/cx-cli/internal/version"
)

// NewCmdRoot creates the root command for cx.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cx",
		Short: "A command-line interface for Stackbox CMS sites",
		Long: `cx renders Stackbox CMS pages from theme templates.

Templates mark replaceable spots with <cx:tag> and <cx:region> tokens.
Pages fill the tags with their fields and the regions with content modules.
cx can inspect templates, manage pages and modules, serve rendered pages
over HTTP and export a site as static files.

Get started by running: cx init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/cx/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, plain (default: output_format from config, else table)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cmd.SetVersionTemplate(version.String() + "\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(template.NewCmdTemplate())
	cmd.AddCommand(page.NewCmdPage())
	cmd.AddCommand(module.NewCmdModule())
	cmd.AddCommand(search.NewCmdSearch())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(exportcmd.NewCmdExport())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
