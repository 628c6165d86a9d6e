package serve

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/config"
	"github.com/open-cli-collective/cx-cli/internal/logging"
	"github.com/open-cli-collective/cx-cli/internal/store"
)

func testConfig() *config.Config {
	cfg := &config.Config{ThemesPath: "themes", DatabasePath: "cx.db"}
	cfg.ApplyDefaults()
	return cfg
}

func testThemes() fstest.MapFS {
	return fstest.MapFS{
		"default/index.tpl.html": &fstest.MapFile{Data: []byte(
			`<html><head></head><body><h1><cx:tag name="title">Untitled</cx:tag></h1>` +
				`<img src="@logo.png"><cx:region name="main">Nothing yet</cx:region></body></html>`)},
		"default/logo.png": &fstest.MapFile{Data: []byte("PNG")},
	}
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "cx.db"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewServer_RendersPages(t *testing.T) {
	s := setupStore(t)
	page := &api.Page{Title: "About", URL: "/about/", Visibility: api.VisibilityVisible}
	require.NoError(t, s.CreatePage(context.Background(), page))
	require.NoError(t, s.AddModule(context.Background(), &api.Module{
		PageID: page.ID, Region: "main", Name: "Intro", Content: "<p>Hi</p>"}))

	ts := httptest.NewServer(newServer(testConfig(), &serveOptions{}, s, testThemes(), logging.Discard()).Handler())
	defer ts.Close()

	status, body := get(t, ts.URL+"/about/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>About</h1>")
	assert.Contains(t, body, `src="/themes/default/logo.png"`)
	assert.Contains(t, body, "<p>Hi</p>")

	status, body = get(t, ts.URL+"/themes/default/logo.png")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PNG", body)

	status, _ = get(t, ts.URL+"/missing/")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNewServer_AutoHomepage(t *testing.T) {
	s := setupStore(t)
	ts := httptest.NewServer(newServer(testConfig(), &serveOptions{autoHomepage: true}, s, testThemes(), logging.Discard()).Handler())
	defer ts.Close()

	status, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>Home</h1>")
	assert.Contains(t, body, "Nothing yet")

	home, err := s.GetPageByURL(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "Home", home.Title)
}

func TestNewServer_NoAssets(t *testing.T) {
	ts := httptest.NewServer(newServer(testConfig(), &serveOptions{noAssets: true}, setupStore(t), testThemes(), logging.Discard()).Handler())
	defer ts.Close()

	status, _ := get(t, ts.URL+"/themes/default/logo.png")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRunServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- runServe(ctx, testConfig(), &serveOptions{addr: "127.0.0.1:0"}, setupStore(t), testThemes(), logging.Discard())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServesThemes(t *testing.T) {
	assert.True(t, servesThemes("/themes/"))
	assert.False(t, servesThemes("/"))
	assert.False(t, servesThemes("https://cdn.example.com/themes/"))
	assert.False(t, servesThemes("//cdn.example.com/themes/"))
}
