package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ListModules returns the modules placed on a page, plus the site's modules in
// any of the given global regions.
func (c *Client) ListModules(ctx context.Context, pageID int64, globalRegions []string) ([]Module, error) {
	params := url.Values{}
	for _, region := range globalRegions {
		params.Add("global_region", region)
	}

	path := fmt.Sprintf("/api/pages/%d/modules", pageID)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result PaginatedResponse[Module]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse modules response: %w", err)
	}

	return result.Results, nil
}

// CreateModule adds a module to a page.
func (c *Client) CreateModule(ctx context.Context, module *Module) (*Module, error) {
	body, err := c.Post(ctx, fmt.Sprintf("/api/pages/%d/modules", module.PageID), module)
	if err != nil {
		return nil, err
	}

	var created Module
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse create module response: %w", err)
	}

	return &created, nil
}

// DeleteModule deletes a module.
func (c *Client) DeleteModule(ctx context.Context, moduleID int64) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/api/modules/%d", moduleID))
	return err
}
