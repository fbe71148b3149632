// Package todo implements the todo list and theme preference that share
// the key-value store with the user screen.
//
// Storage layout:
//
//	"todos" - JSON array of {id, text, completed}, in insertion order
//	"theme" - the literal string "dark" or "light"
//
// A newly added todo carries Animate == AnimateFadeIn in memory until the
// animation delay has passed. The flag is never written to storage.
package todo

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aanand-mishra/local-crud/internal/recordstore"
	"github.com/aanand-mishra/local-crud/internal/storage"
	"github.com/aanand-mishra/local-crud/internal/types"
)

var (
	ErrNotInitialized     = errors.New("todo: controller not initialized")
	ErrAlreadyInitialized = errors.New("todo: controller already initialized")
	ErrEmptyText          = errors.New("todo: text is empty")
	ErrNotFound           = errors.New("todo: not found")
	ErrInvalidTheme       = errors.New("todo: theme must be dark or light")
)

// AnimateFadeIn marks a todo that was just added.
const AnimateFadeIn = "fade-in"

// DefaultAnimationDelay matches the length of the fade-in transition.
const DefaultAnimationDelay = 300 * time.Millisecond

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

// WithAnimationDelay sets how long the fade-in flag lasts. Zero clears it
// immediately.
func WithAnimationDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithAfterFunc replaces time.AfterFunc for scheduling the fade-in clear.
func WithAfterFunc(fn func(time.Duration, func())) Option {
	return func(c *Controller) {
		if fn != nil {
			c.afterFunc = fn
		}
	}
}

// Controller owns the todo list and the theme.
type Controller struct {
	mu        sync.Mutex
	backend   storage.Storage
	store     *recordstore.Store[types.Todo]
	log       *slog.Logger
	now       func() time.Time
	delay     time.Duration
	afterFunc func(time.Duration, func())

	initialized bool
	items       []types.Todo
	theme       types.Theme
	lastID      int64
}

// New creates a controller over backend. Call Initialize first.
func New(backend storage.Storage, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		log:     slog.Default(),
		now:     time.Now,
		delay:   DefaultAnimationDelay,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		items: make([]types.Todo, 0),
		theme: types.ThemeLight,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = recordstore.New[types.Todo](backend, types.TodosKey, c.log)
	return c
}

// ─────────────────────────────────────────────────────────────────────────────
// Initialize loads the saved todos and theme. It must be called exactly
// once; a second call returns ErrAlreadyInitialized.
//
// Only a stored "dark" turns dark mode on; anything else, including no
// value, means light. A todos blob that does not decode is removed and
// loads as an empty list.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return ErrAlreadyInitialized
	}

	items, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("todo.Initialize: %w", err)
	}

	theme, found, err := c.backend.GetItem(types.ThemeKey)
	if err != nil {
		return fmt.Errorf("todo.Initialize: get theme: %w", err)
	}
	if found && types.Theme(theme) == types.ThemeDark {
		c.theme = types.ThemeDark
	}

	c.items = items
	for _, t := range items {
		if t.ID > c.lastID {
			c.lastID = t.ID
		}
	}
	c.initialized = true
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Add appends a new todo. Text that is blank after trimming is rejected
// with ErrEmptyText; otherwise the text is stored as given.
//
// The new todo starts with Animate == AnimateFadeIn. The clear is
// scheduled through the AfterFunc after the animation delay and finds
// the todo by id, so deletes in between are harmless. A zero delay
// clears the flag before Add returns.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) Add(text string) (types.Todo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return types.Todo{}, ErrNotInitialized
	}
	if strings.TrimSpace(text) == "" {
		return types.Todo{}, ErrEmptyText
	}

	t := types.Todo{ID: c.nextID(), Text: text, Animate: AnimateFadeIn}
	c.items = append(c.items, t)
	c.log.Info("todo added", slog.Int64("id", t.ID))

	if c.delay == 0 {
		c.items[len(c.items)-1].Animate = ""
	} else {
		id := t.ID
		c.afterFunc(c.delay, func() { c.clearAnimation(id) })
	}

	if err := c.persist(); err != nil {
		return t, fmt.Errorf("todo.Add: %w", err)
	}
	return t, nil
}

// clearAnimation drops the fade-in flag of the todo with id. It matches
// on id so a delete or reorder in between cannot hit the wrong entry.
func (c *Controller) clearAnimation(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Animate = ""
			return
		}
	}
}

// Toggle flips the completed flag of the todo with id.
func (c *Controller) Toggle(id int64) (types.Todo, error) {
	return c.update(id, "todo.Toggle", func(t *types.Todo) error {
		t.Completed = !t.Completed
		return nil
	})
}

// Edit replaces the text of the todo with id. Blank text is rejected.
func (c *Controller) Edit(id int64, text string) (types.Todo, error) {
	return c.update(id, "todo.Edit", func(t *types.Todo) error {
		if strings.TrimSpace(text) == "" {
			return ErrEmptyText
		}
		t.Text = text
		return nil
	})
}

func (c *Controller) update(id int64, op string, fn func(*types.Todo) error) (types.Todo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return types.Todo{}, ErrNotInitialized
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return types.Todo{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := fn(&c.items[idx]); err != nil {
		return types.Todo{}, err
	}
	t := c.items[idx]

	if err := c.persist(); err != nil {
		return t, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete removes the todo with id right away and persists the list.
// An unknown id returns ErrNotFound and writes nothing.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return ErrNotInitialized
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	c.log.Info("todo deleted", slog.Int64("id", id))

	if err := c.persist(); err != nil {
		return fmt.Errorf("todo.Delete: %w", err)
	}
	return nil
}

// All returns every todo in insertion order.
func (c *Controller) All() []types.Todo {
	return c.filter(func(types.Todo) bool { return true })
}

// Pending returns the todos not yet completed.
func (c *Controller) Pending() []types.Todo {
	return c.filter(func(t types.Todo) bool { return !t.Completed })
}

// Completed returns the completed todos.
func (c *Controller) Completed() []types.Todo {
	return c.filter(func(t types.Todo) bool { return t.Completed })
}

func (c *Controller) filter(keep func(types.Todo) bool) []types.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Todo, 0, len(c.items))
	for _, t := range c.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Theme returns the current theme.
func (c *Controller) Theme() types.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// ─────────────────────────────────────────────────────────────────────────────
// SetTheme stores theme, which must be dark or light; anything else
// returns ErrInvalidTheme and keeps the current theme.
// ─────────────────────────────────────────────────────────────────────────────
func (c *Controller) SetTheme(theme types.Theme) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return ErrNotInitialized
	}
	if theme != types.ThemeDark && theme != types.ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	return c.saveTheme(theme)
}

// ToggleTheme switches between dark and light and returns the new theme.
func (c *Controller) ToggleTheme() (types.Theme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return c.theme, ErrNotInitialized
	}
	next := types.ThemeDark
	if c.theme == types.ThemeDark {
		next = types.ThemeLight
	}
	// On a storage failure the new theme stays applied in memory.
	return next, c.saveTheme(next)
}

func (c *Controller) saveTheme(theme types.Theme) error {
	c.theme = theme
	if err := c.backend.SetItem(types.ThemeKey, string(theme)); err != nil {
		c.log.Error("failed to persist theme", slog.String("error", err.Error()))
		return fmt.Errorf("todo: save theme: %w", err)
	}
	return nil
}

func (c *Controller) indexOf(id int64) int {
	for i, t := range c.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) nextID() int64 {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

func (c *Controller) persist() error {
	if err := c.store.Save(c.items); err != nil {
		c.log.Error("failed to persist todos",
			slog.Int("count", len(c.items)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
