package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/propdash/internal/apperr"
	"github.com/dgnsrekt/propdash/internal/documents"
	"github.com/dgnsrekt/propdash/internal/events"
	"github.com/dgnsrekt/propdash/internal/session"
)

// DocumentService is the document processing surface the API exposes.
type DocumentService interface {
	Upload(ctx context.Context, name string, content []byte) (documents.Result, error)
	ProcessSamples(ctx context.Context) ([]documents.Result, error)
	ProcessDirectory(ctx context.Context) ([]documents.Result, error)
	List() ([]documents.Result, error)
	Get(id string) (documents.Result, error)
	Delete(id string) error
	Summary() (documents.Summary, error)
	Export() (string, int, error)
	Fragment() (string, error)
}

// Deps wires the server to the rest of the service.
type Deps struct {
	Sessions  *session.Manager
	Documents DocumentService
	Broker    *events.Broker
	Fragments fs.FS
	Static    fs.FS
}

func NewServer(d Deps) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Property Dashboard API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
			slog.Debug("events docs response write failed", "error", err)
		}
	})

	registerPageRoutes(router, d)
	registerSessionHandlers(api, d.Sessions)
	registerTabHandlers(api, d.Sessions)
	registerChartHandlers(api)
	if d.Documents != nil {
		registerDocumentHandlers(api, d.Documents)
	}
	registerMiscHandlers(api, d)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return huma.Error504GatewayTimeout("timed out waiting for content")
	}
	if errors.Is(err, context.Canceled) {
		return huma.Error503ServiceUnavailable("request canceled")
	}
	var coded *apperr.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case apperr.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case apperr.CodeUnknownTab, apperr.CodeSessionNotFound, apperr.CodeDocumentNotFound:
			return huma.Error404NotFound(coded.Message)
		case apperr.CodeUnsupportedFormat:
			return huma.Error422UnprocessableEntity(coded.Message)
		case apperr.CodeFetchTransport, apperr.CodeFetchStatus:
			return huma.Error502BadGateway(apperr.Reason(err))
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
