// ABOUTME: JSON responses and error-to-status mapping for the API.
// ABOUTME: Errors are written as {"error": "..."}.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harperreed/fitness/internal/diary"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps diary errors to HTTP status codes.
func statusFor(err error) int {
	var verr *diary.ValidationError
	var serr *diary.StorageError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, diary.ErrNotFound), errors.Is(err, diary.ErrNoGoals):
		return http.StatusNotFound
	case errors.Is(err, diary.ErrInvalidIndex), errors.Is(err, diary.ErrInconsistentState):
		return http.StatusConflict
	case errors.As(err, &serr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= 500 {
		s.log.Error("request failed", "path", r.URL.Path, "err", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
