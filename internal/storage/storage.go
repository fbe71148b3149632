// Package storage defines the Storage interface: a small key-value
// contract with browser localStorage semantics that every backend must
// satisfy.
//
// Controllers never talk to a concrete database. They go through the
// recordstore adapter, which in turn only needs this interface, so tests
// can pass the in-memory backend and production uses SQLite.
package storage

// Storage is the key-value persistence contract.
type Storage interface {
	// GetItem returns the value stored under key. found is false (and err
	// nil) when the key is absent.
	GetItem(key string) (value string, found bool, err error)

	// SetItem stores value under key, overwriting any previous value.
	SetItem(key string, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error

	// Close releases backend resources.
	Close() error
}
