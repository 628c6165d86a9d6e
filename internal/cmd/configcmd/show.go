package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current cx configuration with value source indicators.`,
		Example: `  # Show current config
  cx config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.Globals(cmd)
			return runShow(g.ConfigFile(), g.NoColor, os.Stdout)
		},
	}

	return cmd
}

func runShow(configPath string, noColor bool, w io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides and defaults
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	values := fieldValues(cfg)
	fileValues := fieldValues(fileCfg)

	for _, f := range envVars {
		value := values[f.label]
		_, _ = bold.Fprintf(w, "%-13s", f.label+":")
		if value == "" {
			_, _ = dim.Fprintln(w, "-")
			continue
		}

		// Mask tokens
		display := value
		if strings.Contains(strings.ToLower(f.label), "token") {
			display = maskToken(value)
		}
		fmt.Fprint(w, display)

		source := "default"
		switch {
		case os.Getenv(f.env) != "" && os.Getenv(f.env) == value:
			source = f.env
		case fileErr == nil && fileValues[f.label] == value:
			source = "config"
		}
		_, _ = dim.Fprintf(w, "  (source: %s)\n", source)
	}

	fmt.Fprintln(w)
	_, _ = dim.Fprintf(w, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(w, "(file not found)")
	}

	return nil
}

func fieldValues(c *config.Config) map[string]string {
	siteID := ""
	if c.SiteID != 0 {
		siteID = strconv.FormatInt(c.SiteID, 10)
	}
	return map[string]string{
		"Themes Path": c.ThemesPath,
		"Themes URL":  c.ThemesURL,
		"Root URL":    c.RootURL,
		"Assets URL":  c.AssetsURL,
		"Database":    c.DatabasePath,
		"Site ID":     siteID,
		"Theme":       c.DefaultTheme,
		"Template":    c.DefaultTemplate,
		"Listen":      c.ListenAddr,
		"Remote URL":  c.RemoteURL,
		"API Token":   c.APIToken,
		"Log Level":   c.LogLevel,
		"Output":      c.OutputFormat,
	}
}

func maskToken(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
