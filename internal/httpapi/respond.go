package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/catalogflow/internal/extract"
	"github.com/Lllllllleong/catalogflow/internal/models"
	"github.com/Lllllllleong/catalogflow/internal/services"
	"github.com/Lllllllleong/catalogflow/internal/store"
)

const maxJSONBody = 1 << 20

const (
	msgInternal     = "Error interno del servidor"
	msgInvalidJSON  = "JSON inválido"
	msgUnauthorized = "No autorizado"
	msgBadPassword  = "Contraseña incorrecta"
	msgNotFound     = "Producto no encontrado"
	msgTooLarge     = "El archivo es demasiado grande (máximo 10MB)"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response.", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}

// decodeJSON reads a JSON body of at most maxJSONBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return false
	}
	return true
}

// errorStatus maps a service error to its status code and client message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, extract.ErrValidation),
		errors.Is(err, extract.ErrExtraction),
		errors.Is(err, extract.ErrNoCandidates):
		msg, _ := extract.UserMessage(err)
		return http.StatusBadRequest, msg
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgBadPassword
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// fail writes err to the client. Server-side failures are logged in full and
// reported with a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logError(r, "Request failed.", err)
	}
	writeError(w, status, msg)
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	slog.Error(msg, "method", r.Method, "path", r.URL.Path, "error", err)
}
