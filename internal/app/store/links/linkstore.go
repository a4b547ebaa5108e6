// internal/app/store/links/linkstore.go
package linkstore

import (
	"context"

	"github.com/dalemusser/folio/internal/app/store/kv"
)

// KeyPrefix namespaces shortlink mappings in the key-value store.
const KeyPrefix = "link:"

// Store resolves shortlink keys to destination URLs. Read-only at request time.
type Store struct {
	kv kv.Store
}

func New(s kv.Store) *Store {
	return &Store{kv: s}
}

// Resolve returns the destination for key, or kv.ErrNotFound.
func (s *Store) Resolve(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, KeyPrefix+key)
}

// Put maps key to target with no expiry. Used by seeding and tests.
func (s *Store) Put(ctx context.Context, key, target string) error {
	return s.kv.Set(ctx, KeyPrefix+key, target, 0)
}
