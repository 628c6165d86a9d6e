package configcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/config"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check themes, database and remote connectivity",
		Long: `Test that cx can load the default template, open the page database and,
when remote_url is set, reach the remote CMS with the configured token.`,
		Example: `  # Test configuration
  cx config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.Globals(cmd)
			cfg, err := cmdutil.LoadConfig(g)
			if err != nil {
				return err
			}
			if g.NoColor {
				color.NoColor = true
			}
			return runTest(cmdutil.Context(cmd), cfg, nil, os.Stdout)
		},
	}

	return cmd
}

func runTest(ctx context.Context, cfg *config.Config, httpClient *http.Client, w io.Writer) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	var failed []string
	check := func(name string, err error) {
		if err != nil {
			_, _ = red.Fprintf(w, "✗ %s: %v\n", name, err)
			failed = append(failed, name)
			return
		}
		_, _ = green.Fprintf(w, "✓ %s\n", name)
	}

	check("Default template "+cfg.DefaultTheme+"/"+cfg.DefaultTemplate, checkTemplate(cfg))
	check("Page database "+cfg.DatabasePath, checkDatabase(ctx, cfg))

	if cfg.RemoteURL != "" {
		fmt.Fprintf(w, "Testing connection to %s...\n", cfg.RemoteURL)
		if httpClient == nil {
			httpClient = &http.Client{Timeout: 10 * time.Second}
		}
		check("Remote API access", checkRemote(ctx, cfg, httpClient))
	}

	if len(failed) > 0 {
		fmt.Fprintln(w, "\nCheck your settings with: cx config show")
		fmt.Fprintln(w, "Reconfigure with: cx init")
		return fmt.Errorf("%d check(s) failed", len(failed))
	}
	return nil
}

func checkTemplate(cfg *config.Config) error {
	loader, err := cmdutil.ThemeLoader(cfg, "")
	if err != nil {
		return err
	}
	_, err = loader.Load(cfg.DefaultTemplate, tpl.DefaultFormat)
	return err
}

func checkDatabase(ctx context.Context, cfg *config.Config) error {
	s, err := cmdutil.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	_, err = s.ListPages(ctx)
	return err
}

func checkRemote(ctx context.Context, cfg *config.Config, httpClient *http.Client) error {
	req, err := http.NewRequestWithContext(ctx, "GET", cfg.RemoteURL+"/api/pages?limit=1", nil)
	if err != nil {
		return err
	}
	if cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return errors.New("authentication failed: 401 Unauthorized")
	case http.StatusForbidden:
		return errors.New("access denied: 403 Forbidden")
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
