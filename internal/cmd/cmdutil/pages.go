package cmdutil

import (
	"context"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/config"
	"github.com/open-cli-collective/cx-cli/pkg/render"
)

// Pages is where page and module commands read and write records: the local
// store or a remote CMS.
type Pages interface {
	render.Source
	ListPages(ctx context.Context) ([]api.Page, error)
	SearchPages(ctx context.Context, query string, limit int) ([]api.Page, error)
	CreatePage(ctx context.Context, page *api.Page) error
	DeletePage(ctx context.Context, id int64) error
	AddModule(ctx context.Context, module *api.Module) error
	DeleteModule(ctx context.Context, id int64) error
	Close() error
}

// OpenPages opens the remote CMS when remote is set, otherwise the local store.
func OpenPages(ctx context.Context, cfg *config.Config, remote bool) (Pages, error) {
	if remote {
		client, err := RemoteClient(cfg)
		if err != nil {
			return nil, err
		}
		return &Remote{Client: client}, nil
	}
	return OpenStore(ctx, cfg)
}

// Remote adapts the API client to Pages.
type Remote struct {
	Client *api.Client
}

// GetPageByURL returns the page at url.
func (r *Remote) GetPageByURL(ctx context.Context, url string) (*api.Page, error) {
	return r.Client.GetPageByURL(ctx, url)
}

// ListModules returns a page's modules plus site modules in globalRegions.
func (r *Remote) ListModules(ctx context.Context, pageID int64, globalRegions []string) ([]api.Module, error) {
	return r.Client.ListModules(ctx, pageID, globalRegions)
}

// ListPages returns every page of the site.
func (r *Remote) ListPages(ctx context.Context) ([]api.Page, error) {
	return r.Client.ListAllPages(ctx)
}

// SearchPages returns pages whose title contains query.
func (r *Remote) SearchPages(ctx context.Context, query string, limit int) ([]api.Page, error) {
	result, err := r.Client.ListPages(ctx, &api.ListPagesOptions{Title: query, Limit: limit})
	if err != nil {
		return nil, err
	}
	return result.Results, nil
}

// CreatePage creates page remotely and updates it with the stored record.
func (r *Remote) CreatePage(ctx context.Context, page *api.Page) error {
	created, err := r.Client.CreatePage(ctx, page)
	if err != nil {
		return err
	}
	*page = *created
	return nil
}

// DeletePage deletes a page.
func (r *Remote) DeletePage(ctx context.Context, id int64) error {
	return r.Client.DeletePage(ctx, id)
}

// AddModule creates module remotely and updates it with the stored record.
func (r *Remote) AddModule(ctx context.Context, module *api.Module) error {
	created, err := r.Client.CreateModule(ctx, module)
	if err != nil {
		return err
	}
	*module = *created
	return nil
}

// DeleteModule deletes a module.
func (r *Remote) DeleteModule(ctx context.Context, id int64) error {
	return r.Client.DeleteModule(ctx, id)
}

// Close is a no-op; the client holds no resources.
func (r *Remote) Close() error {
	return nil
}
