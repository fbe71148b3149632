// Package todo contains the HTTP handlers for the todo list and the theme
// preference.
//
// Handlers follow the same closure / factory pattern as the user
// handlers: each exported function receives the todo controller once at
// route registration and returns the http.HandlerFunc for every request:
//
//	router.HandleFunc("POST /api/todos", todo.New(ctrl))
//
// Todos are always written as types.TodoView, so a freshly added todo
// carries "animate": "fade-in" until the controller clears it.
package todo

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	todoctl "github.com/aanand-mishra/local-crud/internal/todo"
	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/aanand-mishra/local-crud/internal/utils/response"
)

// TextBody is the body of POST /api/todos and PUT /api/todos/{id}.
type TextBody struct {
	Text string `json:"text"`
}

// ThemeBody is the body and response of the theme endpoints.
type ThemeBody struct {
	Theme types.Theme `json:"theme"`
}

// List is the response of GET /api/todos.
type List struct {
	Pending   []types.TodoView `json:"pending"`
	Completed []types.TodoView `json:"completed"`
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/todos
// Returns the two views of the list, each in insertion order.
//
//	{ "pending": [...], "completed": [...] }
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, List{
			Pending:   types.ViewsOf(ctrl.Pending()),
			Completed: types.ViewsOf(ctrl.Completed()),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/todos
// Appends a todo and returns it with 201 Created.
//
//	{ "text": "buy milk" }
//
// Error responses:
//
//	400 Bad Request  - empty body, bad JSON, or text that is blank after trimming
//	500 Internal     - the todo was added in memory but not persisted
//
// ─────────────────────────────────────────────────────────────────────────────
func New(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in TextBody
		if err := response.DecodeJSON(r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		created, err := ctrl.Add(in.Text)
		if err != nil {
			response.Error(w, err)
			return
		}

		slog.Info("todo created", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, types.ViewOf(created))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Toggle handles PATCH /api/todos/{id}/toggle
// Moves a todo between pending and completed. 404 when the id is unknown.
// ─────────────────────────────────────────────────────────────────────────────
func Toggle(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		updated, err := ctrl.Toggle(id)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, types.ViewOf(updated))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/todos/{id}
// Replaces the text of a todo. Blank text is a 400 and keeps the old text.
// ─────────────────────────────────────────────────────────────────────────────
func Update(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var in TextBody
		if err := response.DecodeJSON(r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := ctrl.Edit(id, in.Text)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, types.ViewOf(updated))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/todos/{id}
// Removes a todo right away. 404 when the id is unknown.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := ctrl.Delete(id); err != nil {
			response.Error(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// GetTheme handles GET /api/theme.
func GetTheme(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, ThemeBody{Theme: ctrl.Theme()})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SetTheme handles PUT /api/theme
// Saves the theme and echoes it back.
//
//	{ "theme": "dark" }
//
// Anything other than "dark" or "light" is a 400.
// ─────────────────────────────────────────────────────────────────────────────
func SetTheme(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in ThemeBody
		if err := response.DecodeJSON(r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := ctrl.SetTheme(in.Theme); err != nil {
			response.Error(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, ThemeBody{Theme: ctrl.Theme()})
	}
}

// ToggleTheme handles POST /api/theme/toggle and returns the new theme.
func ToggleTheme(ctrl *todoctl.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next, err := ctrl.ToggleTheme()
		if err != nil {
			response.Error(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, ThemeBody{Theme: next})
	}
}

// pathID parses the {id} path segment, writing a 400 when it is not an
// integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}
