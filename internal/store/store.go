// Package store persists pages and their modules in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/open-cli-collective/cx-cli/api"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	site_id          INTEGER NOT NULL DEFAULT 0,
	parent_id        INTEGER NOT NULL DEFAULT 0,
	title            TEXT    NOT NULL,
	url              TEXT    NOT NULL,
	meta_keywords    TEXT    NOT NULL DEFAULT '',
	meta_description TEXT    NOT NULL DEFAULT '',
	theme            TEXT    NOT NULL DEFAULT '',
	template         TEXT    NOT NULL DEFAULT '',
	ordering         INTEGER NOT NULL DEFAULT 0,
	visibility       INTEGER NOT NULL DEFAULT 1,
	date_created     TEXT,
	date_modified    TEXT,
	UNIQUE (site_id, url)
);
CREATE INDEX IF NOT EXISTS idx_pages_parent ON pages (parent_id);

CREATE TABLE IF NOT EXISTS modules (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	site_id  INTEGER NOT NULL DEFAULT 0,
	page_id  INTEGER NOT NULL DEFAULT 0,
	region   TEXT    NOT NULL,
	name     TEXT    NOT NULL,
	type     TEXT    NOT NULL DEFAULT 'html',
	content  TEXT    NOT NULL DEFAULT '',
	ordering INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_modules_page ON modules (site_id, page_id);
CREATE INDEX IF NOT EXISTS idx_modules_region ON modules (site_id, region);
`

const pageColumns = `id, site_id, parent_id, title, url, meta_keywords, meta_description,
	theme, template, ordering, visibility, date_created, date_modified`

const moduleColumns = `id, site_id, page_id, region, name, type, content, ordering`

// ErrDuplicateURL is returned when a page URL is already taken on the site.
var ErrDuplicateURL = errors.New("page url already exists")

// Store reads and writes the pages and modules of one site.
type Store struct {
	db     *sql.DB
	siteID int64
	now    func() time.Time
}

// Open opens (creating if needed) the SQLite database at dataSource and
// migrates its schema.
func Open(ctx context.Context, dataSource string, siteID int64) (*Store, error) {
	db, err := openDB(dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases intact
	db.SetMaxOpenConns(1)

	s := New(db, siteID)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. The schema must already exist; see Migrate.
func New(db *sql.DB, siteID int64) *Store {
	return &Store{
		db:     db,
		siteID: siteID,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CreatePage inserts a page, normalizing its URL, and fills in its ID, site
// and timestamps.
func (s *Store) CreatePage(ctx context.Context, page *api.Page) error {
	page.SiteID = s.siteID
	page.URL = api.FormatPageURL(page.URL)
	if page.Title == "" {
		return errors.New("page title is required")
	}
	now := s.now()
	page.CreatedAt = api.Time{Time: now}
	page.ModifiedAt = api.Time{Time: now}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (site_id, parent_id, title, url, meta_keywords, meta_description,
			theme, template, ordering, visibility, date_created, date_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.SiteID, page.ParentID, page.Title, page.URL, page.MetaKeywords, page.MetaDescription,
		page.Theme, page.Template, page.Ordering, page.Visibility,
		formatTime(page.CreatedAt), formatTime(page.ModifiedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateURL, page.URL)
		}
		return fmt.Errorf("failed to create page: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read page id: %w", err)
	}
	page.ID = id
	return nil
}

// GetPage returns a page by ID.
func (s *Store) GetPage(ctx context.Context, id int64) (*api.Page, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE site_id = ? AND id = ?", s.siteID, id)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page %d: %w", id, api.ErrNotFound)
	}
	return page, err
}

// GetPageByURL returns the page at url. The URL is normalized first.
func (s *Store) GetPageByURL(ctx context.Context, url string) (*api.Page, error) {
	url = api.FormatPageURL(url)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE site_id = ? AND url = ?", s.siteID, url)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page %s: %w", url, api.ErrNotFound)
	}
	return page, err
}

// ListPages returns the site's pages ordered by parent, ordering and title.
func (s *Store) ListPages(ctx context.Context) ([]api.Page, error) {
	return s.queryPages(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE site_id = ? ORDER BY parent_id, ordering, title", s.siteID)
}

// likeEscaper makes LIKE wildcards in a search query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchPages returns pages whose title or URL contains query, case-insensitively.
func (s *Store) SearchPages(ctx context.Context, query string, limit int) ([]api.Page, error) {
	if limit <= 0 {
		limit = 25
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	return s.queryPages(ctx,
		"SELECT "+pageColumns+` FROM pages
		WHERE site_id = ? AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(url) LIKE ? ESCAPE '\')
		ORDER BY title LIMIT ?`, s.siteID, pattern, pattern, limit)
}

// DeletePage removes a page and every module placed on it.
func (s *Store) DeletePage(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE site_id = ? AND id = ?", s.siteID, id)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("page %d: %w", id, api.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM modules WHERE site_id = ? AND page_id = ?", s.siteID, id); err != nil {
		return fmt.Errorf("failed to delete page modules: %w", err)
	}

	return tx.Commit()
}

// AddModule inserts a module. A module with PageID 0 belongs to the whole site
// and is shown in the matching global region of every page.
func (s *Store) AddModule(ctx context.Context, module *api.Module) error {
	module.SiteID = s.siteID
	if module.Region == "" {
		return errors.New("module region is required")
	}
	if module.Name == "" {
		return errors.New("module name is required")
	}
	if module.Type == "" {
		module.Type = api.ModuleTypeHTML
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO modules (site_id, page_id, region, name, type, content, ordering)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		module.SiteID, module.PageID, module.Region, module.Name, module.Type, module.Content, module.Ordering)
	if err != nil {
		return fmt.Errorf("failed to add module: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read module id: %w", err)
	}
	module.ID = id
	return nil
}

// ListModules returns the modules on a page together with the site modules in
// any of globalRegions, ordered by ordering then ID.
func (s *Store) ListModules(ctx context.Context, pageID int64, globalRegions []string) ([]api.Module, error) {
	query := "SELECT " + moduleColumns + " FROM modules WHERE site_id = ? AND (page_id = ?"
	args := []any{s.siteID, pageID}
	if len(globalRegions) > 0 {
		query += " OR (page_id = 0 AND region IN (?" + strings.Repeat(", ?", len(globalRegions)-1) + "))"
		for _, region := range globalRegions {
			args = append(args, region)
		}
	}
	query += ") ORDER BY ordering, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	var modules []api.Module
	for rows.Next() {
		var m api.Module
		if err := rows.Scan(&m.ID, &m.SiteID, &m.PageID, &m.Region, &m.Name, &m.Type, &m.Content, &m.Ordering); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// DeleteModule removes a module by ID.
func (s *Store) DeleteModule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM modules WHERE site_id = ? AND id = ?", s.siteID, id)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("module %d: %w", id, api.ErrNotFound)
	}
	return nil
}

func (s *Store) queryPages(ctx context.Context, query string, args ...any) ([]api.Page, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []api.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*api.Page, error) {
	var (
		p                 api.Page
		created, modified sql.NullString
	)
	err := row.Scan(&p.ID, &p.SiteID, &p.ParentID, &p.Title, &p.URL, &p.MetaKeywords, &p.MetaDescription,
		&p.Theme, &p.Template, &p.Ordering, &p.Visibility, &created, &modified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan page: %w", err)
	}
	p.CreatedAt = parseTime(created)
	p.ModifiedAt = parseTime(modified)
	return &p, nil
}

func formatTime(t api.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.DateTime)
}

func parseTime(s sql.NullString) api.Time {
	if !s.Valid || s.String == "" {
		return api.Time{}
	}
	t, err := time.Parse(time.DateTime, s.String)
	if err != nil {
		return api.Time{}
	}
	return api.Time{Time: t}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
