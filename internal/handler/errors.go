package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"quill/internal/domain"
	"quill/internal/httputil"
)

// respondServiceError maps a service error onto an HTTP response. Typed
// domain errors know their status code; sentinel wrapping covers the rest.
// Anything unrecognized is a 500 with the detail kept out of the response.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		if conflict, ok := httpErr.(*domain.ConflictError); ok {
			httputil.RespondErrorWithExtras(w, conflict.StatusCode(), conflict.Message, map[string]interface{}{
				"resource_type": conflict.ResourceType,
				"resource_id":   conflict.ResourceID,
			})
			return
		}
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUserID pulls the authenticated user from the context, writing a 401
// when missing.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}
