package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// GenericInternalError is the only detail internal failures leak to callers.
const GenericInternalError = "Error interno del servidor"

// RespondError maps domain errors to HTTP responses. notFoundMessage is the
// entity-specific 404 body; validation errors carry their own message;
// anything else is logged and surfaced as a generic 500.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Error(w, http.StatusInternalServerError, GenericInternalError)
	}
}
