package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/myflix/myflix-api/internal/access"
	"github.com/myflix/myflix-api/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// decodeJSON reads a JSON body into dst, answering 413 or 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// pathParam returns the decoded value of a chi URL parameter. chi matches on
// r.URL.RawPath when it is set, leaving its parameters escaped.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// writeServiceError maps a service error to its HTTP status. notFound is the
// status used for a missing user or movie, which differs between routes.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFound int) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
	case errors.Is(err, service.ErrUsernameTaken):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrMovieNotFound):
		writeJSON(w, notFound, errorResponse(err.Error()))
	case errors.Is(err, access.ErrPermissionDenied), errors.Is(err, access.ErrNoRule):
		writeJSON(w, http.StatusForbidden, errorResponse(access.ErrPermissionDenied.Error()))
	case errors.Is(err, access.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
