package core

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Store.Get for keys that were never set
// or have been cleared.
var ErrKeyNotFound = errors.New("key not found")

// Store is durable, visitor-scoped key/value state. It is the server-side
// equivalent of the browser's local storage: values written before a
// navigation must be readable by the next screen, across reloads.
//
// Writes are single-writer-at-a-time per (visitorID, key); the screen that
// owns a key is the only one writing it.
type Store interface {
	Get(ctx context.Context, visitorID, key string) (string, error)
	Set(ctx context.Context, visitorID, key, value string) error
	// Delete removes all given keys in one operation; it must never leave a
	// partially-cleared set behind.
	Delete(ctx context.Context, visitorID string, keys ...string) error
}
