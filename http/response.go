package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/dbmanager"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Client errors carry the error text, which never includes DSN passwords.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dbmanager.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, dbmanager.ErrInvalidInput), errors.Is(err, ErrInvalidBody):
		WriteError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, dbmanager.ErrAlreadyExists):
		WriteError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, dbmanager.ErrUnsupportedProtocol):
		WriteError(w, http.StatusUnprocessableEntity, "unsupported_protocol", err.Error())
	case errors.Is(err, dbmanager.ErrUnknownDriver):
		WriteError(w, http.StatusUnprocessableEntity, "unknown_driver", err.Error())
	case errors.Is(err, ErrNotSaved):
		slog.Error("save failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "not_saved",
			"Change applied but not saved; it is lost on restart unless a later change saves it")
	case errors.Is(err, ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid token")
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
