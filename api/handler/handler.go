// Package handler implements the HTTP handlers of the translation API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/tercume"
	"github.com/ZaguanLabs/tercume/jobs"
)

// Translator is the translation surface the handlers depend on.
type Translator interface {
	DetectLanguage(text string) string
	TranslateField(ctx context.Context, contentType string, contentID int64, fieldPath, text, sourceLang string) tercume.FieldResult
	GetTranslatedField(ctx context.Context, contentType string, contentID int64, fieldPath, originalText, targetLang string) string
	TranslateArray(ctx context.Context, contentType string, contentID int64, fieldName string, records []tercume.Record, sourceLang string) []tercume.FieldResult
	GetTranslatedArray(ctx context.Context, contentType string, contentID int64, fieldName string, records []tercume.Record, targetLang string) []tercume.Record
}

// HTMLTranslator translates rich-text content.
type HTMLTranslator interface {
	TranslateHTML(ctx context.Context, content, targetLang, sourceLang string) string
}

// JobQueue runs translation work in the background.
type JobQueue interface {
	Enqueue(jobType string, payload any, fn jobs.WorkFunc) (string, error)
	Status(id string) (jobs.Snapshot, error)
}

// FieldLister lists the stored translations of one content entity.
type FieldLister interface {
	ListFields(ctx context.Context, contentType string, contentID int64) ([]tercume.FieldTranslation, error)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Job types.
const (
	JobTranslateField = "translate_field"
	JobTranslateArray = "translate_array"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return false
	}
	return true
}

// validLanguage accepts an empty code or a supported one.
func validLanguage(lang string) bool {
	return lang == "" || strings.EqualFold(lang, tercume.AutoSource) || tercume.IsSupported(lang)
}

func parseContentID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
