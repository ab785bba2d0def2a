// Package api wires the HTTP retrieval and batch API.
package api

import (
	"net/http"

	mw "github.com/ZaguanLabs/tercume/api/middleware"
	"github.com/ZaguanLabs/tercume/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handlers for the router.
type Dependencies struct {
	HealthHandler http.HandlerFunc
	DetectHandler http.HandlerFunc

	TranslateFieldHandler http.HandlerFunc
	GetFieldHandler       http.HandlerFunc
	ListFieldsHandler     http.HandlerFunc
	TranslateArrayHandler http.HandlerFunc
	LookupArrayHandler    http.HandlerFunc
	TranslateHTMLHandler  http.HandlerFunc

	JobStatusHandler http.HandlerFunc
	PurgeHandler     http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", orNotImplemented(deps.HealthHandler))
		r.Post("/detect", orNotImplemented(deps.DetectHandler))

		r.Route("/translations", func(r chi.Router) {
			r.Post("/fields", orNotImplemented(deps.TranslateFieldHandler))
			r.Get("/fields", orNotImplemented(deps.GetFieldHandler))
			r.Post("/arrays", orNotImplemented(deps.TranslateArrayHandler))
			r.Post("/arrays/lookup", orNotImplemented(deps.LookupArrayHandler))
			r.Post("/html", orNotImplemented(deps.TranslateHTMLHandler))
			r.Get("/{contentType}/{contentID}", orNotImplemented(deps.ListFieldsHandler))
		})

		r.Get("/jobs/{jobID}", orNotImplemented(deps.JobStatusHandler))

		r.Delete("/admin/translations", orNotImplemented(deps.PurgeHandler))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "Route not found", nil)
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, response.CodeNotImplemented, "Endpoint not yet implemented", nil)
	}
}
