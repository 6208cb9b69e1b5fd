// Maps storage errors to API errors and writes error responses.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maruel/wishlist/internal/server/dto"
	"github.com/maruel/wishlist/internal/storage"
)

// storageError converts an error returned by storage into an APIError.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrSlugConflict):
		return dto.Conflict(err.Error()).Wrap(err)
	case errors.Is(err, storage.ErrNameRequired):
		return dto.MissingField("name")
	case errors.Is(err, storage.ErrInvalidGroup):
		return dto.BadRequest("Invalid group").Wrap(err)
	default:
		return dto.StorageError(err)
	}
}

// resolveGroup normalizes a group path segment and checks the group exists.
func resolveGroup(s *storage.Store, raw string) (string, error) {
	slug := storage.Slugify(raw)
	ok, err := s.GroupExists(slug)
	if err != nil {
		return "", dto.StorageError(err)
	}
	if !ok {
		return "", dto.GroupNotFound(raw)
	}
	return slug, nil
}

// NotFound answers unknown API routes with a JSON error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, dto.NotFound("Route"))
}

// writeErrorResponse writes an APIError as a JSON response.
// Use this in raw http.HandlerFunc handlers that don't use server.Wrap.
func writeErrorResponse(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorCode := dto.ErrorCodeInternal
	message := "internal error"
	var details map[string]any

	var ewsErr dto.ErrorWithStatus
	if errors.As(err, &ewsErr) {
		statusCode = ewsErr.StatusCode()
		errorCode = ewsErr.Code()
		message = ewsErr.Error()
		if m, ok := ewsErr.(interface{ Message() string }); ok {
			message = m.Message()
		}
		details = ewsErr.Details()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := dto.ErrorResponse{
		Error: dto.ErrorDetails{
			Code:    errorCode,
			Message: message,
		},
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
