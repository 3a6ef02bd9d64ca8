package driven

import "context"

// StateStore is a string-keyed store of opaque serialised values.
// The editor keeps exactly one key in it. Backed by SQLite, Redis or memory.
type StateStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
