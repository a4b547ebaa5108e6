// internal/domain/models/flags.go
package models

// Feature flag names stored in the key-value store.
const (
	FlagOpenToWork = "open_to_work"
)

// DefaultOpenToWork is used when neither the store nor config set the flag.
const DefaultOpenToWork = "true"
