// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// controllers, storage, validation and handlers can all import types
// without depending on each other.
package types

// Storage keys. Each key holds one JSON document in the key-value store.
const (
	UsersKey = "users"
	TodosKey = "todos"
	ThemeKey = "theme"
)

// Draft field names accepted by the CRUD controller.
const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldAge   = "age"
)

// User represents one persisted user record.
//
// ID is assigned once at creation (creation time in Unix milliseconds,
// as a decimal string) and never changes afterwards.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// Draft is the in-progress form state. All fields are raw strings, exactly
// as typed; Age is only coerced to an integer after validation passes.
//
// An empty ID means "add mode"; a non-empty ID means the draft edits the
// record with that ID.
//
// The validate tags are checked by go-playground/validator. "notblank",
// "letters", "emailshape" and "agerange" are custom tags registered by the
// validate package.
type Draft struct {
	ID    string `json:"id"`
	Name  string `json:"name"  validate:"notblank,letters"`
	Email string `json:"email" validate:"required,emailshape"`
	Age   string `json:"age"   validate:"required,agerange"`
}

// IsEdit reports whether the draft targets an existing record.
func (d Draft) IsEdit() bool {
	return d.ID != ""
}

// FieldErrors maps a draft field name to a human-readable message.
// An empty (or nil) map means the draft is valid.
type FieldErrors map[string]string

// Clone returns an independent copy; nil stays nil.
func (fe FieldErrors) Clone() FieldErrors {
	if fe == nil {
		return nil
	}
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// Todo is one entry of the todo list.
//
// Animate is a transient presentation hint ("fade-in" right after the
// todo is added, "" otherwise). It is never persisted.
type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Animate   string `json:"-"`
}

// TodoView is a todo as clients see it. It keeps the stored fields and
// adds the animate hint, omitted once cleared.
type TodoView struct {
	Todo
	Animate string `json:"animate,omitempty"`
}

// ViewOf returns the client view of t.
func ViewOf(t Todo) TodoView {
	return TodoView{Todo: t, Animate: t.Animate}
}

// ViewsOf returns the client views of todos, never nil.
func ViewsOf(todos []Todo) []TodoView {
	out := make([]TodoView, 0, len(todos))
	for _, t := range todos {
		out = append(out, ViewOf(t))
	}
	return out
}

// Theme is the persisted colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// RemoteUser is the payload exchanged with the remote user API.
type RemoteUser struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
