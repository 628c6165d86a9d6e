package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/cx-cli/api"
	"github.com/open-cli-collective/cx-cli/internal/logging"
	"github.com/open-cli-collective/cx-cli/pkg/render"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

type fakeRenderer struct {
	gotURL    string
	gotFormat string
	err       error
}

func (f *fakeRenderer) RenderURL(_ context.Context, url, format string) (*render.Result, error) {
	f.gotURL = url
	f.gotFormat = format
	if f.err != nil {
		return nil, f.err
	}
	return &render.Result{
		Page:    &api.Page{URL: api.FormatPageURL(url)},
		Format:  format,
		Content: "rendered " + format,
	}, nil
}

func setupServer(t *testing.T, r PageRenderer) (*Server, *httptest.Server) {
	t.Helper()
	s := New(r, logging.Discard())
	s.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_HTMLPage(t *testing.T) {
	r := &fakeRenderer{}
	_, ts := setupServer(t, r)

	resp, body := get(t, ts.URL+"/about/team")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rendered html", body)
	assert.Equal(t, "about/team", r.gotURL)
	assert.Equal(t, tpl.DefaultFormat, r.gotFormat)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=7200, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "public", resp.Header.Get("Pragma"))
	assert.Equal(t, "Fri, 01 Mar 2024 12:00:00 GMT", resp.Header.Get("Expires"))
	assert.Equal(t, "Fri, 01 Mar 2024 10:00:00 GMT", resp.Header.Get("Last-Modified"))
}

func TestServer_DataFormats(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
	}{
		{"json", "application/json"},
		{"xml", "text/xml"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r := &fakeRenderer{}
			_, ts := setupServer(t, r)

			resp, body := get(t, ts.URL+"/?format="+tt.format)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "rendered "+tt.format, body)
			assert.Equal(t, "", r.gotURL)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Equal(t, "no-cache, must-revalidate", resp.Header.Get("Cache-Control"))
			assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
		})
	}
}

func TestServer_InvalidFormat(t *testing.T) {
	r := &fakeRenderer{}
	_, ts := setupServer(t, r)

	resp, _ := get(t, ts.URL+"/?format=../secret")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, r.gotFormat)
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"page not found", fmt.Errorf("%w: /x/", render.ErrPageNotFound), http.StatusNotFound},
		{"unsupported format", render.ErrUnsupportedFormat, http.StatusNotFound},
		{"missing template", fmt.Errorf("load: %w", tpl.ErrTemplateNotFound), http.StatusNotFound},
		{"other", errors.New("database is locked"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := setupServer(t, &fakeRenderer{err: tt.err})

			resp, body := get(t, ts.URL+"/x/")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotContains(t, body, "database is locked")
		})
	}
}

func TestServer_HealthCheck(t *testing.T) {
	r := &fakeRenderer{}
	_, ts := setupServer(t, r)

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
	assert.Empty(t, r.gotURL)
}

func TestServer_Mount(t *testing.T) {
	r := &fakeRenderer{}
	s := New(r, logging.Discard())
	s.Mount("/themes", fstest.MapFS{
		"default/styles/site.css": &fstest.MapFile{Data: []byte("body{}")},
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/themes/default/styles/site.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{}", body)
	assert.Empty(t, r.gotURL)
}

func TestServer_LogsRequests(t *testing.T) {
	var buf bytes.Buffer
	s := New(&fakeRenderer{err: render.ErrPageNotFound}, logging.New("info", &buf))

	req := httptest.NewRequest(http.MethodGet, "/missing/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), "path=/missing/")
	assert.Contains(t, buf.String(), "status=404")
}

func TestServer_Run(t *testing.T) {
	s := New(&fakeRenderer{}, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
