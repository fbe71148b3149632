// Package memory is an in-process storage.Storage, used by tests and by
// the CLI when no database file is wanted.
package memory

import "sync"

// Memory keeps every key in a map guarded by a mutex.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string

	// FailSet, when non-nil, is returned by SetItem instead of storing.
	// It lets tests simulate a full or broken backend.
	FailSet error
}

// New creates an empty store.
func New() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Close() error { return nil }
