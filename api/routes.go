package api

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"text-expander/session"
	"text-expander/shortcut"
)

func RegisterRoutes(registry *shortcut.Registry, sessions *session.Manager, staticFS fs.FS, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	h := &handler{registry: registry, sessions: sessions, log: logger}

	// Shortcuts API
	r.Route("/api/shortcuts", func(r chi.Router) {
		r.Get("/", h.listShortcuts)
		r.Post("/", h.createShortcut)
		r.Get("/export", h.exportShortcuts)
		r.Get("/{id}", h.getShortcut)
		r.Put("/{id}", h.updateShortcut)
		r.Delete("/{id}", h.deleteShortcut)
	})
	r.Post("/api/expand", h.expand)

	// Live typing sessions
	r.Get("/api/sessions", h.listSessions)
	r.Post("/api/sessions", h.createSession)
	r.Delete("/api/sessions/{id}", h.killSession)
	r.Post("/api/sessions/{id}/input", h.feedSession)
	r.Get("/api/sessions/{id}/ws", h.handleWS)

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// Test filesystems are already rooted, so probe index.html to detect that.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Read the page directly; http.FileServer redirects paths ending in index.html.
	r.Get("/", serveFile(staticSub, "index.html"))

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

// requestLogger logs one line per request through logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

type handler struct {
	registry *shortcut.Registry
	sessions *session.Manager
	log      *slog.Logger
}
