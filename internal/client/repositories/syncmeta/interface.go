// Package syncmeta persists the small key-value state that rides alongside the
// record collections: the sync watermark and the local settings blob.
package syncmeta

import "context"

// Repository is a string key-value store.
type Repository interface {
	// Get returns the value for key, or "" with no error when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key if present.
	Delete(ctx context.Context, key string) error
}
