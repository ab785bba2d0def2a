package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/tercume"
	"github.com/ZaguanLabs/tercume/api/response"
	"github.com/ZaguanLabs/tercume/jobs"
	"github.com/go-chi/chi/v5"
)

type fieldRequest struct {
	ContentType    string `json:"content_type"`
	ContentID      int64  `json:"content_id"`
	Field          string `json:"field"`
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
}

type arrayRequest struct {
	ContentType    string           `json:"content_type"`
	ContentID      int64            `json:"content_id"`
	Field          string           `json:"field"`
	Records        []tercume.Record `json:"records"`
	SourceLanguage string           `json:"source_language"`
	Lang           string           `json:"lang"`
}

// jobPayload is what a job snapshot reports about its input.
type jobPayload struct {
	ContentType string `json:"content_type"`
	ContentID   int64  `json:"content_id"`
	Field       string `json:"field"`
	Records     int    `json:"records,omitempty"`
}

// validateEntity checks the fields shared by every content-addressed request.
func validateEntity(contentType string, contentID int64, field string) string {
	switch {
	case strings.TrimSpace(contentType) == "":
		return "content_type is required"
	case contentID <= 0:
		return "content_id must be a positive integer"
	case strings.TrimSpace(field) == "":
		return "field is required"
	}
	return ""
}

// NewDetectHandler returns an http.HandlerFunc for POST /api/v1/detect.
func NewDetectHandler(tr Translator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if !decodeJSON(w, r, &req) {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			response.BadRequest(w, "text is required")
			return
		}
		response.JSON(w, map[string]string{"language": tr.DetectLanguage(req.Text)})
	}
}

// NewTranslateFieldHandler returns an http.HandlerFunc for
// POST /api/v1/translations/fields. The translation runs as a background job.
func NewTranslateFieldHandler(tr Translator, q JobQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fieldRequest
		if !decodeJSON(w, r, &req) {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if msg := validateEntity(req.ContentType, req.ContentID, req.Field); msg != "" {
			response.BadRequest(w, msg)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			response.BadRequest(w, "text is required")
			return
		}
		if !validLanguage(req.SourceLanguage) {
			response.BadRequest(w, "source_language is not supported")
			return
		}

		payload := jobPayload{ContentType: req.ContentType, ContentID: req.ContentID, Field: req.Field}
		id, err := q.Enqueue(JobTranslateField, payload, func(ctx context.Context, progress jobs.ProgressFunc) (any, error) {
			return tr.TranslateField(ctx, req.ContentType, req.ContentID, req.Field, req.Text, req.SourceLanguage), nil
		})
		if err != nil {
			enqueueFailed(w, err)
			return
		}
		response.Accepted(w, map[string]string{"job_id": id})
	}
}

// NewGetFieldHandler returns an http.HandlerFunc for
// GET /api/v1/translations/fields. A missing translation yields the
// original text.
func NewGetFieldHandler(tr Translator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		contentID, ok := parseContentID(q.Get("content_id"))
		if !ok {
			response.BadRequest(w, "content_id must be a positive integer")
			return
		}
		if msg := validateEntity(q.Get("content_type"), contentID, q.Get("field")); msg != "" {
			response.BadRequest(w, msg)
			return
		}
		lang := q.Get("lang")
		if lang == "" || !tercume.IsSupported(lang) {
			response.BadRequest(w, "lang must be a supported language")
			return
		}

		text := tr.GetTranslatedField(r.Context(), q.Get("content_type"), contentID, q.Get("field"), q.Get("original"), lang)
		response.JSON(w, map[string]string{"text": text})
	}
}

// NewListFieldsHandler returns an http.HandlerFunc for
// GET /api/v1/translations/{contentType}/{contentID}.
func NewListFieldsHandler(lister FieldLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentType := chi.URLParam(r, "contentType")
		contentID, ok := parseContentID(chi.URLParam(r, "contentID"))
		if !ok {
			response.BadRequest(w, "content_id must be a positive integer")
			return
		}

		rows, err := lister.ListFields(r.Context(), contentType, contentID)
		if err != nil {
			slog.Error("list field translations failed",
				"content_type", contentType,
				"content_id", contentID,
				"error", err,
			)
			response.Error(w, http.StatusServiceUnavailable, response.CodeUnavailable,
				"Translation store unavailable", nil)
			return
		}
		if rows == nil {
			rows = []tercume.FieldTranslation{}
		}
		response.JSON(w, rows)
	}
}

// NewTranslateArrayHandler returns an http.HandlerFunc for
// POST /api/v1/translations/arrays.
func NewTranslateArrayHandler(tr Translator, q JobQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req arrayRequest
		if !decodeJSON(w, r, &req) {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if msg := validateEntity(req.ContentType, req.ContentID, req.Field); msg != "" {
			response.BadRequest(w, msg)
			return
		}
		if len(req.Records) == 0 {
			response.BadRequest(w, "records must be a non-empty array")
			return
		}
		if !validLanguage(req.SourceLanguage) {
			response.BadRequest(w, "source_language is not supported")
			return
		}

		payload := jobPayload{ContentType: req.ContentType, ContentID: req.ContentID, Field: req.Field, Records: len(req.Records)}
		id, err := q.Enqueue(JobTranslateArray, payload, func(ctx context.Context, progress jobs.ProgressFunc) (any, error) {
			return tr.TranslateArray(ctx, req.ContentType, req.ContentID, req.Field, req.Records, req.SourceLanguage), nil
		})
		if err != nil {
			enqueueFailed(w, err)
			return
		}
		response.Accepted(w, map[string]string{"job_id": id})
	}
}

// NewLookupArrayHandler returns an http.HandlerFunc for
// POST /api/v1/translations/arrays/lookup.
func NewLookupArrayHandler(tr Translator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req arrayRequest
		if !decodeJSON(w, r, &req) {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if msg := validateEntity(req.ContentType, req.ContentID, req.Field); msg != "" {
			response.BadRequest(w, msg)
			return
		}
		if req.Lang == "" || !tercume.IsSupported(req.Lang) {
			response.BadRequest(w, "lang must be a supported language")
			return
		}

		records := tr.GetTranslatedArray(r.Context(), req.ContentType, req.ContentID, req.Field, req.Records, req.Lang)
		if records == nil {
			records = []tercume.Record{}
		}
		response.JSON(w, map[string]any{"records": records})
	}
}

// NewTranslateHTMLHandler returns an http.HandlerFunc for
// POST /api/v1/translations/html.
func NewTranslateHTMLHandler(h HTMLTranslator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HTML           string `json:"html"`
			TargetLanguage string `json:"target_language"`
			SourceLanguage string `json:"source_language"`
		}
		if !decodeJSON(w, r, &req) {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if req.TargetLanguage == "" || !tercume.IsSupported(req.TargetLanguage) {
			response.BadRequest(w, "target_language must be a supported language")
			return
		}
		if !validLanguage(req.SourceLanguage) {
			response.BadRequest(w, "source_language is not supported")
			return
		}

		out := h.TranslateHTML(r.Context(), req.HTML, req.TargetLanguage, req.SourceLanguage)
		response.JSON(w, map[string]string{"html": out})
	}
}

func enqueueFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, jobs.ErrStopped) {
		response.Error(w, http.StatusServiceUnavailable, response.CodeUnavailable,
			"Job runner is shutting down", nil)
		return
	}
	slog.Error("enqueue translation job failed", "error", err)
	response.Error(w, http.StatusInternalServerError, response.CodeInternal,
		"An unexpected error occurred", nil)
}
