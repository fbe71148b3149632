// Package recordstore persists one ordered collection as a single JSON
// array under a fixed storage key.
//
// The collection is read once with Load and rewritten in full by every
// Save. Save refuses to run before Load has completed, so an empty
// initial state can never clobber data already on disk.
package recordstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/local-crud/internal/storage"
)

// ErrNotLoaded is returned by Save when Load has not completed yet.
var ErrNotLoaded = errors.New("recordstore: save before initial load")

// Store is a typed view of one key in a storage.Storage.
type Store[T any] struct {
	backend storage.Storage
	key     string
	log     *slog.Logger
	loaded  bool
}

// New returns a Store for key. A nil logger falls back to slog.Default().
func New[T any](backend storage.Storage, key string, log *slog.Logger) *Store[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Store[T]{backend: backend, key: key, log: log}
}

// Key returns the storage key this store owns.
func (s *Store[T]) Key() string { return s.key }

// Loaded reports whether Load has completed.
func (s *Store[T]) Loaded() bool { return s.loaded }

// Load reads the collection. An absent key or a JSON null yields an
// empty collection. A blob that cannot be decoded is removed from the
// backend and an empty collection is returned; that case is logged, not
// reported as an error. Only backend failures are returned.
func (s *Store[T]) Load() ([]T, error) {
	raw, found, err := s.backend.GetItem(s.key)
	if err != nil {
		return nil, fmt.Errorf("recordstore.Load: get %q: %w", s.key, err)
	}

	items := make([]T, 0)
	if found {
		var decoded []T
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			s.log.Warn("discarding corrupt stored collection",
				slog.String("key", s.key),
				slog.String("error", err.Error()))
			if err := s.backend.RemoveItem(s.key); err != nil {
				return nil, fmt.Errorf("recordstore.Load: remove corrupt %q: %w", s.key, err)
			}
		} else if decoded != nil {
			items = decoded
		}
	}

	s.loaded = true
	return items, nil
}

// Save serialises items and overwrites the stored blob. A nil slice is
// written as [] so the stored document is always an array.
func (s *Store[T]) Save(items []T) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if items == nil {
		items = make([]T, 0)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("recordstore.Save: marshal %q: %w", s.key, err)
	}

	if err := s.backend.SetItem(s.key, string(data)); err != nil {
		return fmt.Errorf("recordstore.Save: set %q: %w", s.key, err)
	}
	return nil
}
