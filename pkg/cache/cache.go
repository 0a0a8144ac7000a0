// Package cache stores registry responses between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a local directory (default)
//   - [RedisCache]: a shared Redis instance, useful on CI fleets
//   - [NullCache]: stores nothing, used for --no-cache
//
// Keys are plain strings; callers namespace them ("npm:lodash"). Values are
// opaque bytes with a per-entry TTL. A TTL of 0 means the entry never expires.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiring entries.
type Cache interface {
	// Get returns the stored value. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
