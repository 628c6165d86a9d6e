package completion

import (
	"context"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// Templates completes template names of the --theme flag's theme (or the
// default theme) in the --format flag's format.
func Templates(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := cmdutil.LoadConfig(cmdutil.Globals(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	theme, _ := cmd.Flags().GetString("theme")
	format, _ := cmd.Flags().GetString("format")
	loader, err := cmdutil.ThemeLoader(cfg, theme)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return templateNames(loader, format, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// Themes completes theme directory names.
func Themes(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := cmdutil.LoadConfig(cmdutil.Globals(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return themeNames(os.DirFS(cfg.ThemesPath), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// PageURLs completes URLs of pages in the local database.
func PageURLs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := cmdutil.LoadConfig(cmdutil.Globals(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := cmdutil.Context(cmd)
	s, err := cmdutil.OpenStore(ctx, cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer s.Close()
	return pageURLs(ctx, s, toComplete), cobra.ShellCompDirectiveNoFileComp
}

type pageLister interface {
	ListPages(ctx context.Context) ([]api.Page, error)
}

func templateNames(loader *tpl.Loader, format, prefix string) []string {
	if format == "" {
		format = tpl.DefaultFormat
	}
	names, err := loader.List(format)
	if err != nil {
		return nil
	}
	return matching(names, prefix)
}

func themeNames(fsys fs.FS, prefix string) []string {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return matching(names, prefix)
}

func pageURLs(ctx context.Context, pages pageLister, prefix string) []string {
	all, err := pages.ListPages(ctx)
	if err != nil {
		return nil
	}
	urls := make([]string, 0, len(all))
	for _, p := range all {
		urls = append(urls, p.URL)
	}
	return matching(urls, prefix)
}

// matching returns the sorted values starting with prefix.
func matching(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
