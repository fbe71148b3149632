// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses may return any JSON shape. Error responses always
// look like:
//
//	{ "status": "error", "error": "crud: user not found: 17" }
//
// and validation failures additionally carry the per-field messages:
//
//	{ "status": "error", "error": "validation failed", "fields": { "email": "Email is invalid" } }
package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aanand-mishra/local-crud/internal/crud"
	"github.com/aanand-mishra/local-crud/internal/todo"
	"github.com/aanand-mishra/local-crud/internal/types"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields types.FieldErrors `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given status code.
// Order matters: Header() -> WriteHeader() -> body.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError reports field errors from a rejected submit.
func ValidationError(fields types.FieldErrors) Response {
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Fields: fields,
	}
}

// StatusFor maps controller errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, crud.ErrNotFound), errors.Is(err, todo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, crud.ErrConfirmationRequired):
		return http.StatusConflict
	case errors.Is(err, crud.ErrUnknownField),
		errors.Is(err, todo.ErrEmptyText),
		errors.Is(err, todo.ErrInvalidTheme):
		return http.StatusBadRequest
	case errors.Is(err, crud.ErrNotInitialized), errors.Is(err, todo.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status chosen by StatusFor.
func Error(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), GeneralError(err))
}

// DecodeJSON decodes the request body into v. An empty body is reported
// as "request body is empty".
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

var errEmptyBody = errors.New("request body is empty")
