package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/intradocs/intradocs/internal/core/domain"
)

var (
	errMissingToken      = errors.New("missing or malformed bearer token")
	errMissingPermission = errors.New("permission denied")
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain error kinds onto HTTP statuses. Validation errors
// carry their per-field details in the response body; everything unmapped
// collapses to a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: "internal error"}

	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
		body.Error = "invalid input"
		body.Fields = domain.FieldErrors(err)
	case domain.IsKind(err, domain.ErrInconsistentHierarchy):
		status = http.StatusUnprocessableEntity
		body.Error = "inconsistent process hierarchy"
	case domain.IsKind(err, domain.ErrNotFound):
		status = http.StatusNotFound
		body.Error = "not found"
	case domain.IsKind(err, domain.ErrConflict):
		status = http.StatusConflict
		body.Error = "conflict"
	case errors.Is(err, errMissingPermission):
		status = http.StatusForbidden
		body.Error = "forbidden"
	case domain.IsKind(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		body.Error = "unauthorized"
	case domain.IsKind(err, domain.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
		body.Error = "file too large"
	case domain.IsKind(err, domain.ErrUnsupportedFileType):
		status = http.StatusUnsupportedMediaType
		body.Error = "unsupported file type"
	case domain.IsKind(err, domain.ErrUploadFailed):
		status = http.StatusBadGateway
		body.Error = "upload failed"
	}

	writeJSON(w, status, body)
}
