// Package cmdutil holds the setup shared by cx subcommands: global flags,
// configuration, the page store and the renderer.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/config"
	"github.com/open-cli-collective/cx-cli/internal/logging"
	"github.com/open-cli-collective/cx-cli/internal/store"
	"github.com/open-cli-collective/cx-cli/internal/view"
	"github.com/open-cli-collective/cx-cli/pkg/render"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// GlobalOptions are the persistent flags of the root command.
type GlobalOptions struct {
	ConfigPath string
	Output     string
	NoColor    bool
}

// Globals reads the persistent flags from cmd.
func Globals(cmd *cobra.Command) GlobalOptions {
	var g GlobalOptions
	g.ConfigPath, _ = cmd.Flags().GetString("config")
	g.Output, _ = cmd.Flags().GetString("output")
	g.NoColor, _ = cmd.Flags().GetBool("no-color")
	return g
}

// Context returns the command's context, or a background context when the
// command was executed without one.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// ConfigFile returns the --config value or the default config path.
func (g GlobalOptions) ConfigFile() string {
	if g.ConfigPath != "" {
		return g.ConfigPath
	}
	return config.DefaultConfigPath()
}

// View creates an output renderer for the --output and --no-color flags.
// The config's output_format applies when --output is not set.
func (g GlobalOptions) View(cfg *config.Config) (*view.Renderer, error) {
	format := g.Output
	if format == "" && cfg != nil {
		format = cfg.OutputFormat
	}
	if err := view.ValidateFormat(format); err != nil {
		return nil, err
	}
	if format == "" {
		format = string(view.FormatTable)
	}
	return view.NewRenderer(view.Format(format), g.NoColor), nil
}

// LoadConfig loads and validates the configuration.
func LoadConfig(g GlobalOptions) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(g.ConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'cx init' to configure)", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'cx init' to configure)", err)
	}
	return cfg, nil
}

// Logger returns a logger at the configured level writing to stderr.
func Logger(cfg *config.Config) *slog.Logger {
	return LoggerTo(cfg, os.Stderr)
}

// LoggerTo returns a logger at the configured level writing to w.
func LoggerTo(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(cfg.LogLevel, w)
}

// OpenStore opens the configured page database.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(ctx, cfg.DatabasePath, cfg.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to open page store %s: %w", cfg.DatabasePath, err)
	}
	return s, nil
}

// RemoteClient returns an API client for the configured remote CMS.
func RemoteClient(cfg *config.Config) (*api.Client, error) {
	if cfg.RemoteURL == "" {
		return nil, fmt.Errorf("remote_url is not configured (set it in the config file or CX_REMOTE_URL)")
	}
	return api.NewClient(cfg.RemoteURL, cfg.APIToken), nil
}

// RenderOptions maps configuration to renderer options.
func RenderOptions(cfg *config.Config) render.Options {
	return render.Options{
		DefaultTheme:    cfg.DefaultTheme,
		DefaultTemplate: cfg.DefaultTemplate,
		ThemesURL:       cfg.ThemesURL,
		RootURL:         cfg.RootURL,
		AssetsURL:       cfg.AssetsURL,
	}
}

// NewRenderer creates a page renderer over source using the configured
// themes directory.
func NewRenderer(cfg *config.Config, source render.Source, logger *slog.Logger) *render.Renderer {
	return render.New(source, os.DirFS(cfg.ThemesPath), RenderOptions(cfg), logger)
}

// ThemeLoader returns the template loader for theme, or the default theme.
func ThemeLoader(cfg *config.Config, theme string) (*tpl.Loader, error) {
	r := render.New(nil, os.DirFS(cfg.ThemesPath), RenderOptions(cfg), nil)
	return r.Loader(theme)
}
