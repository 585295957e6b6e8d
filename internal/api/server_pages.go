package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgnsrekt/propdash/internal/events"
)

// registerPageRoutes serves the browser-facing shell, assets, fragments and
// event streams.
func registerPageRoutes(router chi.Router, d Deps) {
	router.With(noStore).Get("/", func(w http.ResponseWriter, r *http.Request) {
		s, created, err := d.Sessions.Ensure(w, r)
		if err != nil {
			slog.Error("session create failed", "error", err)
			http.Error(w, "could not start session", http.StatusInternalServerError)
			return
		}
		if created {
			slog.Info("session started", "session", shortID(s.ID), "remote", r.RemoteAddr)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(s.Page.Render())); err != nil {
			slog.Debug("shell response write failed", "error", err)
		}
	})

	if d.Static != nil {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}

	router.With(noStore).Get("/fragments/documents.html", func(w http.ResponseWriter, r *http.Request) {
		if d.Documents == nil {
			http.NotFound(w, r)
			return
		}
		markup, err := d.Documents.Fragment()
		if err != nil {
			slog.Warn("documents fragment render failed", "error", err)
			http.Error(w, "could not render documents", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(markup)); err != nil {
			slog.Debug("documents fragment write failed", "error", err)
		}
	})
	if d.Fragments != nil {
		router.With(noStore).Handle("/fragments/*", http.StripPrefix("/fragments/", http.FileServer(http.FS(d.Fragments))))
	}

	if d.Broker != nil {
		resolve := d.Sessions.Resolver()
		router.Get("/ws/navigation", events.WebSocketHandler(d.Broker, resolve))
		router.Get("/events", events.SSEHandler(d.Broker, resolve))
	}
}
