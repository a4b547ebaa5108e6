// internal/app/store/flags/flagstore.go
package flagstore

import (
	"context"
	"errors"

	"github.com/dalemusser/folio/internal/app/store/kv"
)

// KeyPrefix namespaces feature flags in the key-value store.
const KeyPrefix = "flag:"

type Store struct {
	kv kv.Store
}

func New(s kv.Store) *Store {
	return &Store{kv: s}
}

// Get returns the raw flag string and whether it was set.
// A miss is not an error.
func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := s.kv.Get(ctx, KeyPrefix+name)
	if errors.Is(err, kv.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores a flag value with no expiry.
func (s *Store) Set(ctx context.Context, name, value string) error {
	return s.kv.Set(ctx, KeyPrefix+name, value, 0)
}
