/*
Package prefstore implements the local preference store: a namespaced
key/value store holding JSON documents, with an atomic read-modify-write
Update and a change feed that mirrors browser storage events.

Each browser profile owns one namespace. The shared SiteNamespace holds data
every profile sees, such as the mock user collection.
*/
package prefstore

import (
	"context"
	"errors"
)

// SiteNamespace is shared by every profile.
const SiteNamespace = "site"

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("prefstore: key not found")

	// ErrNoChange may be returned by an Update function to abort the write
	// without failing. Update then returns nil and emits no change.
	ErrNoChange = errors.New("prefstore: no change")

	// ErrConflict is returned when an optimistic Update kept losing races.
	ErrConflict = errors.New("prefstore: concurrent update conflict")
)

// UpdateFunc receives the current value (nil when absent) and returns the
// value to store. Returning a nil value deletes the key.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Store is a namespaced key/value store of JSON documents. Implementations
// are safe for concurrent use and publish every effective write to Feed.
type Store interface {
	// Get returns the raw JSON stored under key, or ErrNotFound.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores value under key.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error and emits no change.
	Delete(ctx context.Context, namespace, key string) error

	// Update atomically replaces the value under key with the result of fn.
	Update(ctx context.Context, namespace, key string, fn UpdateFunc) error

	// Feed returns the change feed of this store.
	Feed() *Feed

	// Close releases the backend resources.
	Close() error
}

// Watcher is implemented by backends shared between server instances. Watch
// relays writes made by other instances into the local Feed until ctx ends.
type Watcher interface {
	Watch(ctx context.Context) error
}

type originKey struct{}

// WithOrigin tags writes made with ctx as coming from the given tab, so the
// tab is not notified of its own change.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the tab recorded by WithOrigin, or "".
func OriginFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}

// applyUpdate runs fn and reports the value to write, or write=false when fn
// asked for no change.
func applyUpdate(fn UpdateFunc, current []byte, exists bool) (next []byte, write bool, err error) {
	next, err = fn(current, exists)
	if errors.Is(err, ErrNoChange) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if next == nil && !exists {
		return nil, false, nil
	}
	return next, true, nil
}
