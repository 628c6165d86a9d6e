// Package server serves rendered pages over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/open-cli-collective/cx-cli/pkg/render"
	"github.com/open-cli-collective/cx-cli/pkg/tpl"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

var formatPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// PageRenderer renders the page at a URL.
type PageRenderer interface {
	RenderURL(ctx context.Context, url, format string) (*render.Result, error)
}

// Server serves pages from a PageRenderer.
type Server struct {
	renderer PageRenderer
	logger   *slog.Logger
	mux      *http.ServeMux
	now      func() time.Time
}

// New creates a Server and registers its routes.
func New(renderer PageRenderer, logger *slog.Logger) *Server {
	s := &Server{
		renderer: renderer,
		logger:   logger,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealthCheck)
	s.mux.HandleFunc("GET /{path...}", s.handlePage)
	return s
}

// Mount serves static files from fsys under prefix, e.g. theme assets.
func (s *Server) Mount(prefix string, fsys fs.FS) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	s.mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServerFS(fsys)))
}

// Handler returns the server's HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting page server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("page server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Stopping page server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("page server shutdown failed: %w", err)
	}
	s.logger.Info("Page server stopped.")
	return nil
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = tpl.DefaultFormat
	}
	if !formatPattern.MatchString(format) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	res, err := s.renderer.RenderURL(r.Context(), r.PathValue("path"), format)
	if err != nil {
		switch {
		case errors.Is(err, render.ErrPageNotFound),
			errors.Is(err, render.ErrUnsupportedFormat),
			errors.Is(err, tpl.ErrTemplateNotFound):
			s.logger.Debug("Page not served", "path", r.URL.Path, "format", format, "error", err)
			http.NotFound(w, r)
		default:
			s.logger.Error("Failed to render page", "path", r.URL.Path, "format", format, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	s.setHeaders(w, format)
	_, _ = w.Write([]byte(res.Content))
}

// setHeaders sets content type and cache headers. Pages are cacheable by
// proxies for two hours; data formats are never cached.
func (s *Server) setHeaders(w http.ResponseWriter, format string) {
	now := s.now().UTC()
	h := w.Header()
	h.Set("Last-Modified", now.Format(http.TimeFormat))

	switch format {
	case "json", "xml":
		h.Set("Expires", "Mon, 26 Jul 1997 05:00:00 GMT")
		h.Set("Cache-Control", "no-cache, must-revalidate")
		h.Set("Pragma", "no-cache")
		if format == "json" {
			h.Set("Content-Type", "application/json")
		} else {
			h.Set("Content-Type", "text/xml")
		}
	default:
		h.Set("Expires", now.Add(2*time.Hour).Format(http.TimeFormat))
		h.Set("Cache-Control", "max-age=7200, must-revalidate")
		h.Set("Pragma", "public")
		if format == tpl.DefaultFormat {
			h.Set("Content-Type", "text/html; charset=utf-8")
		} else {
			h.Set("Content-Type", "text/plain; charset=utf-8")
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("Served request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr)
	})
}
