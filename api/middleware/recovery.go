package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/ZaguanLabs/tercume/api/response"
)

// Recovery turns a handler panic into a 500 envelope. http.ErrAbortHandler
// is re-raised so the server can drop the connection. If the handler had
// already started its response, the connection is aborted instead.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w}
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			requestID, _ := GetRequestID(r)
			slog.Error("panic recovered",
				"error", v,
				"path", r.URL.Path,
				"request_id", requestID,
				"stack", string(debug.Stack()),
			)
			if rec.written() {
				panic(http.ErrAbortHandler)
			}
			response.Error(w, http.StatusInternalServerError,
				response.CodeInternal, "An unexpected error occurred", nil)
		}()
		next.ServeHTTP(rec, r)
	})
}
