package handler

import (
	"net/http"

	"github.com/ZaguanLabs/tercume/api/response"
)

// NewHealthHandler checks every named dependency. Nil checks are skipped.
func NewHealthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]string, len(checks))
		degraded := false
		for name, p := range checks {
			if p == nil {
				continue
			}
			services[name] = "ok"
			if err := p.Ping(r.Context()); err != nil {
				services[name] = "degraded"
				degraded = true
			}
		}

		if degraded {
			response.Error(w, http.StatusServiceUnavailable, response.CodeDegraded,
				"One or more services degraded", services)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": services,
		})
	}
}
