// Package init provides the init command for cx.
package init

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/config"
)

type initOptions struct {
	themesPath string
	remoteURL  string
	noVerify   bool
	configPath string
	out        io.Writer
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize cx configuration",
		Long: `Initialize cx with the location of your themes and page database.

This command will guide you through setting up the themes directory, the
URLs pages link their assets with, and optionally a remote CMS to read
pages from. The configuration will be saved to ~/.config/cx/config.yml and
the page database is created if it does not exist.`,
		Example: `  # Interactive setup
  cx init

  # Pre-populate the themes directory and remote CMS
  cx init --themes ./themes --remote-url https://cms.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath = cmdutil.Globals(cmd).ConfigFile()
			opts.out = os.Stdout
			return runInit(cmdutil.Context(cmd), opts)
		},
	}

	cmd.Flags().StringVar(&opts.themesPath, "themes", "", "Themes directory")
	cmd.Flags().StringVar(&opts.remoteURL, "remote-url", "", "Remote CMS URL (e.g., https://cms.example.com)")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "Skip remote connection verification")

	return cmd
}

func runInit(ctx context.Context, opts *initOptions) error {
	// Check if config already exists
	if _, err := os.Stat(opts.configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", opts.configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(opts.out, "Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{
		ThemesPath: opts.themesPath,
		RemoteURL:  opts.remoteURL,
	}
	cfg.ApplyDefaults()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Themes Directory").
				Description("Directory holding one folder per theme").
				Placeholder(config.DefaultThemesPath).
				Value(&cfg.ThemesPath).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("themes directory is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Themes URL").
				Description("URL prefix theme assets are served from").
				Placeholder(config.DefaultThemesURL).
				Value(&cfg.ThemesURL),

			huh.NewInput().
				Title("Root URL").
				Description("URL prefix of the site").
				Placeholder(config.DefaultRootURL).
				Value(&cfg.RootURL),

			huh.NewInput().
				Title("Default Theme").
				Value(&cfg.DefaultTheme),

			huh.NewInput().
				Title("Page Database").
				Description("SQLite database holding pages and modules").
				Value(&cfg.DatabasePath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Remote CMS URL (optional)").
				Description("Read pages from a remote CMS with --remote").
				Placeholder("https://cms.example.com").
				Value(&cfg.RemoteURL),

			huh.NewInput().
				Title("API Token (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIToken),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	return finishInit(ctx, cfg, opts)
}

// finishInit normalizes, validates, verifies and saves cfg, then creates the
// page database.
func finishInit(ctx context.Context, cfg *config.Config, opts *initOptions) error {
	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := os.Stat(cfg.ThemesPath); err != nil {
		fmt.Fprintf(opts.out, "Warning: themes directory %s does not exist yet\n", cfg.ThemesPath)
	}

	// Verify connection unless skipped
	if cfg.RemoteURL != "" && !opts.noVerify {
		fmt.Fprint(opts.out, "Verifying remote connection... ")
		if err := verifyConnection(cfg); err != nil {
			fmt.Fprintln(opts.out, "failed!")
			return fmt.Errorf("connection verification failed: %w", err)
		}
		fmt.Fprintln(opts.out, "success!")
	}

	if err := cfg.Save(opts.configPath); err != nil {
		return err
	}

	s, err := cmdutil.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}

	fmt.Fprintf(opts.out, "\nConfiguration saved to %s\n", opts.configPath)
	fmt.Fprintf(opts.out, "Page database ready at %s\n", cfg.DatabasePath)
	fmt.Fprintln(opts.out, "\nYou're all set! Try running:")
	fmt.Fprintln(opts.out, "  cx template list")
	fmt.Fprintln(opts.out, "  cx page create --title Home --url /")
	fmt.Fprintln(opts.out, "  cx serve")

	return nil
}

// normalize trims the remote URL and makes URL prefixes end with a slash.
func normalize(cfg *config.Config) {
	cfg.RemoteURL = strings.TrimSuffix(strings.TrimSpace(cfg.RemoteURL), "/")
	for _, u := range []*string{&cfg.ThemesURL, &cfg.RootURL, &cfg.AssetsURL} {
		*u = strings.TrimSpace(*u)
		if *u != "" && !strings.HasSuffix(*u, "/") {
			*u += "/"
		}
	}
}

func verifyConnection(cfg *config.Config) error {
	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequest("GET", cfg.RemoteURL+"/api/pages?limit=1", nil)
	if err != nil {
		return err
	}

	if cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == 401 {
		return fmt.Errorf("authentication failed - check your API token")
	}
	if resp.StatusCode == 403 {
		return fmt.Errorf("access denied - check your permissions")
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
