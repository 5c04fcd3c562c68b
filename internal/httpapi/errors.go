package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"trackd/internal/manager"
	"trackd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case manager.IsRunNotFound(err):
		return http.StatusNotFound
	case manager.IsBatchMismatch(err), errors.Is(err, manager.ErrNotInitialized), errors.Is(err, manager.ErrRunClosed):
		return http.StatusConflict
	case manager.IsConfigError(err):
		return http.StatusBadRequest
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// rejectReason labels a rejected request for the rejections counter.
func rejectReason(err error) string {
	switch {
	case manager.IsRunNotFound(err):
		return "run_not_found"
	case manager.IsBatchMismatch(err):
		return "batch_mismatch"
	case manager.IsConfigError(err):
		return "config"
	}
	return ""
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError maps err and writes it.
func writeServiceError(w http.ResponseWriter, err error) int {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		IncrementRejected(rejectReason(err))
	}
	writeJSONError(w, status, err.Error())
	return status
}
