package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ZaguanLabs/tercume"
	"github.com/ZaguanLabs/tercume/api/response"
)

// NewPurgeHandler returns an http.HandlerFunc for
// DELETE /api/v1/admin/translations. Without a lang or content_type filter
// the request must carry all=true.
func NewPurgeHandler(purgers ...tercume.Purger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := tercume.PurgeFilter{
			TargetLang:  tercume.NormalizeLang(q.Get("lang")),
			ContentType: q.Get("content_type"),
		}
		if filter.TargetLang != "" && !tercume.IsSupported(filter.TargetLang) {
			response.BadRequest(w, "lang must be a supported language")
			return
		}
		if filter.TargetLang == "" && filter.ContentType == "" {
			all, _ := strconv.ParseBool(q.Get("all"))
			if !all {
				response.BadRequest(w, "lang or content_type is required; pass all=true to purge everything")
				return
			}
		}

		res, err := tercume.PurgeAll(r.Context(), filter, purgers...)
		if err != nil {
			slog.Error("purge translations failed",
				"lang", filter.TargetLang,
				"content_type", filter.ContentType,
				"error", err,
			)
			response.Error(w, http.StatusServiceUnavailable, response.CodeUnavailable,
				"Purge did not complete", res)
			return
		}

		slog.Info("translations purged",
			"lang", filter.TargetLang,
			"content_type", filter.ContentType,
			"cache_deleted", res.CacheDeleted,
			"fields_deleted", res.FieldsDeleted,
		)
		response.JSON(w, res)
	}
}
