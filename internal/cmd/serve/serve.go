// Package serve provides the serve command, which runs the page server.
package serve

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/config"
	"github.com/open-cli-collective/cx-cli/internal/server"
	"github.com/open-cli-collective/cx-cli/pkg/render"
)

type serveOptions struct {
	addr         string
	autoHomepage bool
	noAssets     bool
	remote       bool
}

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered pages over HTTP",
		Long: `Run an HTTP server that renders pages on request.

The request path selects the page and the format query parameter selects the
template variant, e.g. /about/?format=json. Theme files are served under
themes_url when it is a local path. The server stops on SIGINT or SIGTERM.`,
		Example: `  # Serve on the configured listen_addr
  cx serve

  # Serve on all interfaces, creating the homepage if it is missing
  cx serve --addr :8080 --auto-homepage`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig(cmdutil.Globals(cmd))
			if err != nil {
				return err
			}

			pages, err := cmdutil.OpenPages(cmdutil.Context(cmd), cfg, opts.remote)
			if err != nil {
				return err
			}
			defer pages.Close()

			ctx, stop := signal.NotifyContext(cmdutil.Context(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, opts, pages, os.DirFS(cfg.ThemesPath), cmdutil.Logger(cfg))
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default: listen_addr from config)")
	cmd.Flags().BoolVar(&opts.autoHomepage, "auto-homepage", false, "Create the homepage when it is requested but missing")
	cmd.Flags().BoolVar(&opts.noAssets, "no-assets", false, "Do not serve theme files")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Render pages from the remote CMS instead of the local database")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, opts *serveOptions, source render.Source, themes fs.FS, logger *slog.Logger) error {
	addr := opts.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	return newServer(cfg, opts, source, themes, logger).Run(ctx, addr)
}

func newServer(cfg *config.Config, opts *serveOptions, source render.Source, themes fs.FS, logger *slog.Logger) *server.Server {
	renderOpts := cmdutil.RenderOptions(cfg)
	renderOpts.AutoCreateHomepage = opts.autoHomepage

	s := server.New(render.New(source, themes, renderOpts, logger), logger)
	if !opts.noAssets && servesThemes(cfg.ThemesURL) {
		s.Mount(cfg.ThemesURL, themes)
		logger.Debug("Serving theme files", "url", cfg.ThemesURL, "path", cfg.ThemesPath)
	}
	return s
}

// servesThemes reports whether themesURL is a path on this server rather than
// an external host.
func servesThemes(themesURL string) bool {
	return strings.HasPrefix(themesURL, "/") && !strings.HasPrefix(themesURL, "//") && themesURL != "/"
}
