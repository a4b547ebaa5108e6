// Package timeouts provides centralized deadlines for calls to the
// collaborators each handler talks to.
//
// Handlers wrap every external call with context.WithTimeout using one of
// these values:
//   - Ping: health checks against the data store and key-value store
//   - Store: a single insert, lookup or key-value read/write
//   - Verify: the bot-verification round trip
//   - Mail: the OAuth2 token exchange plus the send call
//
// Values can be set at startup with Configure. Zero values keep the defaults.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultStore  = 5 * time.Second
	DefaultVerify = 10 * time.Second
	DefaultMail   = 15 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	store  = DefaultStore
	verify = DefaultVerify
	mail   = DefaultMail
)

func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

func Store() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return store
}

func Verify() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return verify
}

func Mail() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return mail
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping   time.Duration
	Store  time.Duration
	Verify time.Duration
	Mail   time.Duration
}

// Configure sets custom timeout values. Call it during startup before
// handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Store > 0 {
		store = cfg.Store
	}
	if cfg.Verify > 0 {
		verify = cfg.Verify
	}
	if cfg.Mail > 0 {
		mail = cfg.Mail
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	store = DefaultStore
	verify = DefaultVerify
	mail = DefaultMail
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Store: store, Verify: verify, Mail: mail}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Mail(), h.Log, "contact notification")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
