package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/logging"
	"github.com/hpungsan/prompthive/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Library is the storage surface the UI needs. *storage.Gateway implements it.
type Library interface {
	ops.StatusSource
	Write(ctx context.Context, db *library.Database) error
}

// NewServer creates and configures the HTTP server for the PromptHive web UI.
func NewServer(lib Library, version, bind string, port int, logger *slog.Logger) (*http.Server, error) {
	h, err := newHandlers(lib, version, logger)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func newHandlers(lib Library, version string, logger *slog.Logger) (*Handlers, error) {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	log := logging.OrDiscard(logger)
	renderer, err := NewRenderer(templateSub, version, log)
	if err != nil {
		return nil, err
	}

	return &Handlers{
		lib:      lib,
		renderer: renderer,
		log:      log,
	}, nil
}

func (h *Handlers) routes() http.Handler {
	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/prompts", http.StatusFound)
	})
	mux.HandleFunc("GET /prompts", h.HandleList)
	mux.HandleFunc("GET /prompts/{id}", h.HandleDetail)
	mux.HandleFunc("POST /prompts/{id}/favorite", h.HandleFavorite)
	mux.HandleFunc("POST /prompts/{id}/fill", h.HandleFill)
	mux.HandleFunc("DELETE /prompts/{id}", h.HandleDelete)
	mux.HandleFunc("GET /collections", h.HandleCollections)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	// Reject cross-site form posts, then add security headers
	return securityHeaders(http.NewCrossOriginProtection().Handler(mux))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	log := logging.OrDiscard(logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("PromptHive UI running", "url", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
