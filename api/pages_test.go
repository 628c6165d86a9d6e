package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListPages(t *testing.T) {
	testData := loadTestData(t, "pages.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pages", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.WriteHeader(http.StatusOK)
		w.Write(testData)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	result, err := client.ListPages(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.True(t, result.HasMore())

	home := result.Results[0]
	assert.Equal(t, int64(1), home.ID)
	assert.Equal(t, "Home", home.Title)
	assert.True(t, home.IsHomepage())
	assert.True(t, home.IsVisible())
	assert.Equal(t, 2024, home.CreatedAt.Year())
	assert.Equal(t, 30, home.ModifiedAt.Minute())

	about := result.Results[1]
	assert.Equal(t, "/about/", about.URL)
	assert.False(t, about.IsVisible())
	assert.True(t, about.CreatedAt.IsZero())
}

func TestClient_ListPages_WithOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		assert.Equal(t, "About", r.URL.Query().Get("title"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	result, err := client.ListPages(context.Background(), &ListPagesOptions{
		Limit:  50,
		Cursor: "abc",
		Title:  "About",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.False(t, result.HasMore())
}

func TestClient_GetPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pages/42", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": 42, "title": "Contact", "url": "/contact/"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	page, err := client.GetPage(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Contact", page.Title)
}

func TestClient_GetPageByURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pages/by-url", r.URL.Path)
		assert.Equal(t, "/about/team/", r.URL.Query().Get("url"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": 7, "title": "Team", "url": "/about/team/"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	page, err := client.GetPageByURL(context.Background(), "about/team")
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.ID)
}

func TestClient_GetPageByURL_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Page not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	_, err := client.GetPageByURL(context.Background(), "/missing/")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClient_GetPage_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	_, err := client.GetPage(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse page response")
}

func TestClient_DeletePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/api/pages/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	require.NoError(t, client.DeletePage(context.Background(), 9))
}

func TestClient_ListAllPages(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)

		w.WriteHeader(http.StatusOK)
		if cursor == "" {
			w.Write([]byte(`{"results": [{"id": 1, "title": "Home", "url": "/"}], "_links": {"next": "/api/pages?cursor=p2&limit=100"}}`))
			return
		}
		w.Write([]byte(`{"results": [{"id": 2, "title": "About", "url": "/about/"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	pages, err := client.ListAllPages(context.Background())

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "About", pages[1].Title)
	assert.Equal(t, []string{"", "p2"}, cursors)
}

func TestClient_ListAllPages_StuckCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"results": [], "_links": {"next": "/api/pages?limit=100"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	_, err := client.ListAllPages(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not advance the cursor")
}

func TestClient_CreatePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/pages", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var got Page
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Contact", got.Title)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 12, "title": "Contact", "url": "/contact/", "visibility": 1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	page, err := client.CreatePage(context.Background(), &Page{Title: "Contact", URL: "/contact/"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.ID)
	assert.True(t, page.IsVisible())
}
