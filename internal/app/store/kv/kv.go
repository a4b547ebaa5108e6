// Package kv is the key-value store used for shortlinks, feature flags and
// rate-limit counters.
//
// Three backends implement Store:
//   - Redis: the production backend (native key expiry)
//   - Mongo: a single collection with a TTL index on expires_at
//   - Memory: process-local map, for local development and tests
//
// All backends treat an expired key exactly like a missing one.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-valued key-value store with optional per-key expiry.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value at key. A ttl of zero means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Backend names accepted by the kv_backend config key.
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// ValidBackend reports whether name is a supported backend.
func ValidBackend(name string) bool {
	switch name {
	case BackendRedis, BackendMongo, BackendMemory:
		return true
	}
	return false
}
