// Package user contains the HTTP handlers that drive the user form
// controller.
//
// Handlers are built with the closure / factory pattern: each exported
// function receives the controller once at route registration and
// returns the http.HandlerFunc that runs on every request:
//
//	router.HandleFunc("GET /api/users", user.GetState(ctrl))
//
// Every successful response carries the full controller state, so a
// client can re-render from the response alone.
package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/local-crud/internal/crud"
	"github.com/aanand-mishra/local-crud/internal/utils/response"
)

// FieldUpdate is the body of PATCH /api/users/draft.
type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ─────────────────────────────────────────────────────────────────────────────
// GetState handles GET /api/users
// Returns the collection, the draft, the edit flag and the field errors.
//
//	{ "users": [...], "draft": {...}, "edit_mode": false, "errors": {} }
//
// ─────────────────────────────────────────────────────────────────────────────
func GetState(ctrl *crud.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, ctrl.State())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateDraft handles PATCH /api/users/draft
// Sets one draft field and clears that field's error.
//
//	{ "field": "email", "value": "a@b.com" }
//
// ─────────────────────────────────────────────────────────────────────────────
func UpdateDraft(ctrl *crud.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in FieldUpdate
		if err := response.DecodeJSON(r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := ctrl.UpdateDraftField(in.Field, in.Value); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, ctrl.State())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit handles POST /api/users/submit
// Validates the draft and adds or updates the record.
//
// Error responses:
//
//	400 Bad Request  - validation failed; "fields" holds one message per field
//	500 Internal     - the record was applied in memory but not persisted
//
// ─────────────────────────────────────────────────────────────────────────────
func Submit(ctrl *crud.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("submitting user draft")

		fields, err := ctrl.Submit()
		if err != nil {
			slog.Error("error submitting user", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}
		if len(fields) > 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(fields))
			return
		}

		response.WriteJSON(w, http.StatusOK, ctrl.State())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// BeginEdit handles POST /api/users/{id}/edit
// Copies the stored user into the draft and enters edit mode.
// ─────────────────────────────────────────────────────────────────────────────
func BeginEdit(ctrl *crud.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		record, ok := ctrl.Find(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(errors.New("no user found with id: "+id)))
			return
		}

		if err := ctrl.BeginEdit(record); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, ctrl.State())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CancelEdit handles POST /api/users/cancel
// Resets the draft, leaves edit mode and clears every field error.
// ─────────────────────────────────────────────────────────────────────────────
func CancelEdit(ctrl *crud.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.CancelEdit(); err != nil {
			response.Error(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, ctrl.State())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/users/{id}
// Removes one user. 404 when the id is unknown.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(ctrl *crud.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a user", slog.String("id", id))

		if err := ctrl.DeleteOne(id); err != nil {
			slog.Error("error deleting user",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, ctrl.State())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ClearAll handles DELETE /api/users?confirm=true
// The client must ask the user first and then send confirm=true.
// Without it the request is refused with 409 Conflict and nothing changes.
// ─────────────────────────────────────────────────────────────────────────────
func ClearAll(ctrl *crud.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
		slog.Info("clearing all users", slog.Bool("confirmed", confirmed))

		if err := ctrl.ClearAll(confirmed); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, ctrl.State())
	}
}
