package store

import "errors"

// ErrInvalidKey indicates the provided key is empty or unusable.
var ErrInvalidKey = errors.New("store: invalid key")

// Store is a durable string key-value adapter. Implementations are
// synchronous from the caller's viewpoint and give no atomicity guarantee
// across keys; consumers must tolerate partial writes.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool)

	// Set persists value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes the value stored under key. Removing an absent key is
	// not an error.
	Remove(key string) error
}
