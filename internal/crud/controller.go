// Package crud implements the user form controller: it owns the loaded
// collection, the form draft, the edit-mode flag and the current field
// errors, and funnels every change through its operations.
//
// Cycle: load once -> validate -> mutate -> persist -> reset form.
// Reads after Initialize come from memory; every mutation writes the full
// collection back through the record store.
package crud

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aanand-mishra/local-crud/internal/recordstore"
	"github.com/aanand-mishra/local-crud/internal/storage"
	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/aanand-mishra/local-crud/internal/validate"
)

var (
	ErrNotInitialized       = errors.New("crud: controller not initialized")
	ErrAlreadyInitialized   = errors.New("crud: controller already initialized")
	ErrUnknownField         = errors.New("crud: unknown draft field")
	ErrNotFound             = errors.New("crud: user not found")
	ErrConfirmationRequired = errors.New("crud: clearing all users requires confirmation")
)

// State is a read-only snapshot of the controller.
//
// Version grows by one with every state change. Listeners on different
// goroutines may receive snapshots out of order; the higher Version is
// the newer state.
type State struct {
	Version  uint64            `json:"version"`
	Users    []types.User      `json:"users"`
	Draft    types.Draft       `json:"draft"`
	EditMode bool              `json:"edit_mode"`
	Errors   types.FieldErrors `json:"errors"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used to derive new ids.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// Controller is safe for concurrent use; operations are serialised so
// each one runs to completion before the next starts.
type Controller struct {
	mu    sync.Mutex
	store *recordstore.Store[types.User]
	log   *slog.Logger
	now   func() time.Time

	initialized bool
	users       []types.User
	draft       types.Draft
	editMode    bool
	errors      types.FieldErrors
	lastID      int64
	version     uint64

	listeners []func(State)
}

// New creates a controller persisting under types.UsersKey in backend.
// Call Initialize before anything else.
func New(backend storage.Storage, opts ...Option) *Controller {
	c := &Controller{
		log:    slog.Default(),
		now:    time.Now,
		users:  make([]types.User, 0),
		errors: make(types.FieldErrors),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = recordstore.New[types.User](backend, types.UsersKey, c.log)
	return c
}

// OnChange registers fn to receive a snapshot after every state change.
// fn runs with the controller lock released.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// ─────────────────────────────────────────────────────────────────────────────
// Initialize loads the stored collection. It must be called exactly once;
// a second call returns ErrAlreadyInitialized.
//
// Absent or null storage loads as an empty collection. A blob that does
// not decode is removed by the record store and also loads as empty.
// Ids issued later stay ahead of the largest loaded id.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) Initialize() error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}

	users, err := c.store.Load()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("crud.Initialize: %w", err)
	}

	c.users = users
	c.initialized = true
	for _, u := range users {
		if n, err := strconv.ParseInt(u.ID, 10, 64); err == nil && n > c.lastID {
			c.lastID = n
		}
	}
	c.log.Debug("users loaded", slog.Int("count", len(users)))
	return c.unlockAndNotify()
}

// UpdateDraftField sets one draft field and clears its error.
func (c *Controller) UpdateDraftField(name, value string) error {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}

	switch name {
	case types.FieldName:
		c.draft.Name = value
	case types.FieldEmail:
		c.draft.Email = value
	case types.FieldAge:
		c.draft.Age = value
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	delete(c.errors, name)
	return c.unlockAndNotify()
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit validates the draft and, when it is valid, adds or replaces the
// record, persists the collection and resets the form.
//
// Outcomes:
//
//	errs non-empty, err nil  - validation failed, nothing changed
//	errs empty, err nil      - record added (add mode) or replaced (edit mode)
//	err non-nil              - memory updated but the write failed
//
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) Submit() (types.FieldErrors, error) {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return nil, ErrNotInitialized
	}

	errs := validate.Draft(c.draft, c.users, c.editMode)
	if len(errs) > 0 {
		c.errors = errs
		out := errs.Clone()
		c.unlockAndNotify()
		return out, nil
	}

	age, err := validate.CoerceAge(c.draft.Age)
	if err != nil {
		// validate.Draft already accepted the age.
		c.mu.Unlock()
		return nil, fmt.Errorf("crud.Submit: %w", err)
	}

	if c.editMode {
		updated := types.User{ID: c.draft.ID, Name: c.draft.Name, Email: c.draft.Email, Age: age}
		replaced := false
		for i := range c.users {
			if c.users[i].ID == updated.ID {
				c.users[i] = updated
				replaced = true
				break
			}
		}
		if !replaced {
			c.log.Warn("edited user no longer exists", slog.String("id", updated.ID))
		}
		c.editMode = false
		c.log.Info("user updated", slog.String("id", updated.ID))
	} else {
		created := types.User{ID: c.nextID(), Name: c.draft.Name, Email: c.draft.Email, Age: age}
		c.users = append(c.users, created)
		c.log.Info("user created", slog.String("id", created.ID))
	}

	c.draft = types.Draft{}
	c.errors = make(types.FieldErrors)

	if err := c.persist(); err != nil {
		c.unlockAndNotify()
		return nil, fmt.Errorf("crud.Submit: %w", err)
	}
	return types.FieldErrors{}, c.unlockAndNotify()
}

// ─────────────────────────────────────────────────────────────────────────────
// BeginEdit loads record into the draft and switches to edit mode.
// The age is formatted back into its text form for the draft.
//
// record must be in the collection; otherwise ErrNotFound is returned and
// the form is left alone.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) BeginEdit(record types.User) error {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if c.indexOf(record.ID) < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, record.ID)
	}
	c.draft = types.Draft{
		ID:    record.ID,
		Name:  record.Name,
		Email: record.Email,
		Age:   strconv.Itoa(record.Age),
	}
	c.editMode = true
	return c.unlockAndNotify()
}

// CancelEdit resets the draft, leaves edit mode and clears all errors.
func (c *Controller) CancelEdit() error {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	c.resetForm()
	return c.unlockAndNotify()
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteOne removes the user with id and persists the collection.
// An unknown id returns ErrNotFound and writes nothing.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) DeleteOne(id string) error {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}

	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.users = append(c.users[:idx:idx], c.users[idx+1:]...)
	c.log.Info("user deleted", slog.String("id", id))

	if err := c.persist(); err != nil {
		c.unlockAndNotify()
		return fmt.Errorf("crud.DeleteOne: %w", err)
	}
	return c.unlockAndNotify()
}

// ─────────────────────────────────────────────────────────────────────────────
// ClearAll empties the collection. The caller must have obtained the
// user's confirmation and pass confirmed == true; the controller never
// asks on its own. Without it ErrConfirmationRequired is returned and
// nothing changes.
//
// On success the form is reset too: edit mode off, empty draft, no errors.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) ClearAll(confirmed bool) error {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if !confirmed {
		c.mu.Unlock()
		return ErrConfirmationRequired
	}

	c.users = make([]types.User, 0)
	c.resetForm()
	c.log.Info("all users cleared")

	if err := c.persist(); err != nil {
		c.unlockAndNotify()
		return fmt.Errorf("crud.ClearAll: %w", err)
	}
	return c.unlockAndNotify()
}

// State returns a snapshot that shares no memory with the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Users returns a copy of the collection in insertion order.
func (c *Controller) Users() []types.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.User(nil), c.users...)
}

// Find returns the user with id.
func (c *Controller) Find(id string) (types.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.users[idx], true
	}
	return types.User{}, false
}

func (c *Controller) indexOf(id string) int {
	for i, u := range c.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) resetForm() {
	c.draft = types.Draft{}
	c.editMode = false
	c.errors = make(types.FieldErrors)
}

// nextID derives an id from the creation time in milliseconds, bumped
// past the last issued or loaded id so it is unique for the session.
func (c *Controller) nextID() string {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return strconv.FormatInt(id, 10)
}

// persist writes the collection. On failure the in-memory state stays
// ahead of what is stored; the error is logged and returned.
func (c *Controller) persist() error {
	if err := c.store.Save(c.users); err != nil {
		c.log.Error("failed to persist users",
			slog.Int("count", len(c.users)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (c *Controller) snapshot() State {
	return State{
		Version:  c.version,
		Users:    append(make([]types.User, 0, len(c.users)), c.users...),
		Draft:    c.draft,
		EditMode: c.editMode,
		Errors:   c.errors.Clone(),
	}
}

// unlockAndNotify bumps the version, releases the lock and then hands a
// snapshot to every listener. It always returns nil so callers can return
// it directly.
func (c *Controller) unlockAndNotify() error {
	c.version++
	s := c.snapshot()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
	return nil
}
