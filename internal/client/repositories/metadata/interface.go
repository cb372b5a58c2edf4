// Package metadata is the local key/value persistence surface: one SQLite
// table that outlives the process, keyed by fixed, well-known names.
package metadata

import "context"

// Repository stores opaque values by key. Get returns (nil, nil) for a key
// that was never set.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
