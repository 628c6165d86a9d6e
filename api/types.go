// Package api provides the page and module records shared by cx and a client
// for a remote CMS that serves them over JSON.
package api

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is matched by errors.Is for missing pages and modules, whether
// they come from the API (status 404) or a local store.
var ErrNotFound = errors.New("not found")

// Page visibility values.
const (
	VisibilityHidden  = 0
	VisibilityVisible = 1
)

// Module content types.
const (
	ModuleTypeHTML     = "html"
	ModuleTypeMarkdown = "markdown"
	ModuleTypeText     = "text"
)

// PaginatedResponse wraps paginated API responses.
type PaginatedResponse[T any] struct {
	Results []T   `json:"results"`
	Links   Links `json:"_links,omitempty"`
}

// Links contains pagination links.
type Links struct {
	Next string `json:"next,omitempty"`
}

// HasMore returns true if there are more results available.
func (p *PaginatedResponse[T]) HasMore() bool {
	return p.Links.Next != ""
}

// Page is a page record: where it lives, how it looks, and the data its
// template tags are filled from.
type Page struct {
	ID              int64  `json:"id"`
	SiteID          int64  `json:"site_id"`
	ParentID        int64  `json:"parent_id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	Theme           string `json:"theme,omitempty"`
	Template        string `json:"template,omitempty"`
	Ordering        int    `json:"ordering"`
	Visibility      int    `json:"visibility"`
	CreatedAt       Time   `json:"date_created,omitempty"`
	ModifiedAt      Time   `json:"date_modified,omitempty"`
}

// IsHomepage reports whether the page is the site root.
func (p *Page) IsHomepage() bool {
	return p.URL == "/"
}

// IsVisible reports whether the page is shown in navigation and exports.
func (p *Page) IsVisible() bool {
	return p.Visibility == VisibilityVisible
}

// Data returns the values used to fill template tags, keyed by tag name.
func (p *Page) Data() map[string]string {
	data := map[string]string{
		"id":               strconv.FormatInt(p.ID, 10),
		"site_id":          strconv.FormatInt(p.SiteID, 10),
		"parent_id":        strconv.FormatInt(p.ParentID, 10),
		"title":            p.Title,
		"url":              p.URL,
		"meta_keywords":    p.MetaKeywords,
		"meta_description": p.MetaDescription,
		"theme":            p.Theme,
		"template":         p.Template,
	}
	if !p.CreatedAt.IsZero() {
		data["date_created"] = p.CreatedAt.Format(time.RFC3339)
	}
	if !p.ModifiedAt.IsZero() {
		data["date_modified"] = p.ModifiedAt.Format(time.RFC3339)
	}
	return data
}

// Module is a unit of content placed in a template region of a page. Modules
// with PageID 0 belong to the site and show up in global regions.
type Module struct {
	ID       int64  `json:"id"`
	SiteID   int64  `json:"site_id"`
	PageID   int64  `json:"page_id"`
	Region   string `json:"region"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Content  string `json:"content"`
	Ordering int    `json:"ordering"`
}

// FormatPageURL normalizes a page URL to have leading and trailing slashes.
// An empty URL is the homepage.
func FormatPageURL(url string) string {
	trimmed := strings.Trim(url, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}

// Time is a wrapper around time.Time for custom JSON parsing.
type Time struct {
	time.Time
}

// UnmarshalJSON parses RFC 3339 timestamps and the "YYYY-MM-DD HH:MM:SS"
// datetime format.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)

	// Handle null or empty
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	// Remove quotes if present
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse(time.DateTime, s)
		if err != nil {
			return err
		}
	}

	t.Time = parsed
	return nil
}

// MarshalJSON formats time in RFC 3339.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return e.Message
}

// Is lets errors.Is match a 404 response against ErrNotFound.
func (e *ErrorResponse) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// IsNotFound reports whether err is, or wraps, a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
