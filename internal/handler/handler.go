package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/grobuddy/internal/errs"
	"github.com/dukerupert/grobuddy/internal/store"
)

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewBadRequestError("invalid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers err as JSON. *errs.HTTPError values pass through and
// store sentinels map onto their status using resource in the message.
// Anything else is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, resource string, err error) {
	var httpErr *errs.HTTPError
	switch {
	case errors.As(err, &httpErr):
		errs.Write(w, httpErr)
	case errors.Is(err, store.ErrNotFound):
		errs.Write(w, errs.NewNotFoundError(resource+" not found"))
	case errors.Is(err, store.ErrForbidden):
		errs.Write(w, errs.NewForbiddenError(resource+" belongs to another user"))
	case errors.Is(err, store.ErrConflict):
		errs.Write(w, errs.NewConflictError(resource+" already exists"))
	case errors.Is(err, store.ErrInvalidCategory):
		errs.Write(w, errs.NewValidationError([]errs.FieldError{
			{Field: "category_id", Error: "does not reference an existing category"},
		}))
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		errs.Write(w, errs.NewInternalServerError())
	}
}
