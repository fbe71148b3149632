// Package server assembles the HTTP API: routes, request ids and metrics.
//
// Route table:
//
//	GET    /api/users              controller state
//	PATCH  /api/users/draft        set one draft field
//	POST   /api/users/submit       validate and add / update
//	POST   /api/users/{id}/edit    load a user into the draft
//	POST   /api/users/cancel       leave edit mode
//	DELETE /api/users/{id}         delete one user
//	DELETE /api/users?confirm=true delete every user
//	GET    /api/todos              pending and completed todos
//	POST   /api/todos              add a todo
//	PATCH  /api/todos/{id}/toggle  flip completed
//	PUT    /api/todos/{id}         edit text
//	DELETE /api/todos/{id}         delete a todo
//	GET    /api/theme              current theme
//	PUT    /api/theme              set theme
//	POST   /api/theme/toggle       flip theme
//	GET    /metrics                Prometheus exposition
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/local-crud/internal/crud"
	todohandler "github.com/aanand-mishra/local-crud/internal/http/handlers/todo"
	"github.com/aanand-mishra/local-crud/internal/http/handlers/user"
	"github.com/aanand-mishra/local-crud/internal/metrics"
	"github.com/aanand-mishra/local-crud/internal/todo"
	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// NewRouter registers every route and wraps the mux with request-id and
// metrics middleware. users and todos must already be initialized.
func NewRouter(users *crud.Controller, todos *todo.Controller, m *metrics.Metrics) http.Handler {
	m.TrackRecords(types.UsersKey, func() int { return len(users.Users()) })
	m.TrackRecords(types.TodosKey, func() int { return len(todos.All()) })

	router := http.NewServeMux()

	router.HandleFunc("GET /api/users", user.GetState(users))
	router.HandleFunc("PATCH /api/users/draft", user.UpdateDraft(users))
	router.HandleFunc("POST /api/users/submit", user.Submit(users))
	router.HandleFunc("POST /api/users/{id}/edit", user.BeginEdit(users))
	router.HandleFunc("POST /api/users/cancel", user.CancelEdit(users))
	router.HandleFunc("DELETE /api/users/{id}", user.Delete(users))
	router.HandleFunc("DELETE /api/users", user.ClearAll(users))

	router.HandleFunc("GET /api/todos", todohandler.GetList(todos))
	router.HandleFunc("POST /api/todos", todohandler.New(todos))
	router.HandleFunc("PATCH /api/todos/{id}/toggle", todohandler.Toggle(todos))
	router.HandleFunc("PUT /api/todos/{id}", todohandler.Update(todos))
	router.HandleFunc("DELETE /api/todos/{id}", todohandler.Delete(todos))

	router.HandleFunc("GET /api/theme", todohandler.GetTheme(todos))
	router.HandleFunc("PUT /api/theme", todohandler.SetTheme(todos))
	router.HandleFunc("POST /api/theme/toggle", todohandler.ToggleTheme(todos))

	router.Handle("GET /metrics", m.Handler())

	return RequestID(m.Middleware(router))
}

// New returns an http.Server with production timeouts set.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// RequestID makes sure every request has an id, echoes it in the
// response and logs the request with it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		slog.Debug("request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))

		next.ServeHTTP(w, r)
	})
}
