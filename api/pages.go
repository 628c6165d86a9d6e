package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ListPagesOptions contains options for listing pages.
type ListPagesOptions struct {
	Limit  int
	Cursor string
	Title  string // Filter by title (contains)
}

// ListPages returns a page of the site's pages.
func (c *Client) ListPages(ctx context.Context, opts *ListPagesOptions) (*PaginatedResponse[Page], error) {
	params := url.Values{}
	params.Set("limit", "25") // Default limit

	if opts != nil {
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Cursor != "" {
			params.Set("cursor", opts.Cursor)
		}
		if opts.Title != "" {
			params.Set("title", opts.Title)
		}
	}

	body, err := c.Get(ctx, "/api/pages?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result PaginatedResponse[Page]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse pages response: %w", err)
	}

	return &result, nil
}

// ListAllPages follows the next links of ListPages until every page has
// been fetched.
func (c *Client) ListAllPages(ctx context.Context) ([]Page, error) {
	opts := &ListPagesOptions{Limit: 100}
	var pages []Page
	for {
		result, err := c.ListPages(ctx, opts)
		if err != nil {
			return nil, err
		}
		pages = append(pages, result.Results...)
		if !result.HasMore() {
			return pages, nil
		}

		next, err := url.Parse(result.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("invalid next link %q: %w", result.Links.Next, err)
		}
		cursor := next.Query().Get("cursor")
		if cursor == "" || cursor == opts.Cursor {
			return nil, fmt.Errorf("next link %q does not advance the cursor", result.Links.Next)
		}
		opts.Cursor = cursor
	}
}

// GetPage returns a single page by ID.
func (c *Client) GetPage(ctx context.Context, pageID int64) (*Page, error) {
	body, err := c.Get(ctx, fmt.Sprintf("/api/pages/%d", pageID))
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}

	return &page, nil
}

// GetPageByURL returns the page published at the given URL.
func (c *Client) GetPageByURL(ctx context.Context, pageURL string) (*Page, error) {
	params := url.Values{}
	params.Set("url", FormatPageURL(pageURL))

	body, err := c.Get(ctx, "/api/pages/by-url?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}

	return &page, nil
}

// CreatePage creates a page and returns the stored record.
func (c *Client) CreatePage(ctx context.Context, page *Page) (*Page, error) {
	body, err := c.Post(ctx, "/api/pages", page)
	if err != nil {
		return nil, err
	}

	var created Page
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse create page response: %w", err)
	}

	return &created, nil
}

// DeletePage deletes a page.
func (c *Client) DeletePage(ctx context.Context, pageID int64) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/api/pages/%d", pageID))
	return err
}
