// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cx configuration",
		Long:  `Commands for viewing, testing, and clearing cx configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

// envVars maps config keys to the environment variables that override them.
var envVars = []struct {
	label string
	env   string
}{
	{"Themes Path", "CX_THEMES_PATH"},
	{"Themes URL", "CX_THEMES_URL"},
	{"Root URL", "CX_ROOT_URL"},
	{"Assets URL", "CX_ASSETS_URL"},
	{"Database", "CX_DATABASE_PATH"},
	{"Site ID", "CX_SITE_ID"},
	{"Theme", "CX_DEFAULT_THEME"},
	{"Template", "CX_DEFAULT_TEMPLATE"},
	{"Listen", "CX_LISTEN_ADDR"},
	{"Remote URL", "CX_REMOTE_URL"},
	{"API Token", "CX_API_TOKEN"},
	{"Log Level", "CX_LOG_LEVEL"},
	{"Output", "CX_OUTPUT_FORMAT"},
}
