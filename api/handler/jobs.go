package handler

import (
	"errors"
	"net/http"

	"github.com/ZaguanLabs/tercume/api/response"
	"github.com/ZaguanLabs/tercume/jobs"
	"github.com/go-chi/chi/v5"
)

// NewJobStatusHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewJobStatusHandler(q JobQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := q.Status(chi.URLParam(r, "jobID"))
		if errors.Is(err, jobs.ErrUnknownJob) {
			response.Error(w, http.StatusNotFound, response.CodeJobNotFound, "Job not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, response.CodeInternal,
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, snap)
	}
}
