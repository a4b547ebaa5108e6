// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/store/kv"
	"golang.org/x/crypto/blake2b"
)

// Limiter provides fixed-window rate limiting with its state held in a
// key-value store, so every instance of the site shares the same counters.
//
// The read-increment-write sequence is not atomic. Concurrent requests from
// one subject can push the count a little past the limit before the write
// lands; the limiter deters abuse and is not a hard quota.
type Limiter struct {
	store    kv.Store
	prefix   string
	limit    int           // max requests per window
	duration time.Duration // window duration
	now      func() time.Time
}

// window is the persisted per-subject state.
type window struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"reset_at"` // unix milliseconds
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Count     int
	Remaining int
	ResetAt   time.Time
}

// New creates a limiter storing counters under prefix.
// limit: maximum requests allowed per duration
// duration: the time window for counting requests
func New(store kv.Store, prefix string, limit int, duration time.Duration) *Limiter {
	return &Limiter{
		store:    store,
		prefix:   prefix,
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow counts one attempt for subject and reports whether it fits in the
// current window. The count is incremented before the limit check, so
// rejected attempts still consume quota.
func (l *Limiter) Allow(ctx context.Context, subject string) (Decision, error) {
	key := l.prefix + SubjectKey(subject)
	now := l.now()

	var w window
	raw, err := l.store.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return Decision{}, err
	default:
		if json.Unmarshal([]byte(raw), &w) != nil {
			// unreadable state starts a fresh window
			w = window{}
		}
	}

	resetAt := time.UnixMilli(w.ResetAt)
	if w.ResetAt == 0 || !now.Before(resetAt) {
		w = window{ResetAt: now.Add(l.duration).UnixMilli()}
		resetAt = time.UnixMilli(w.ResetAt)
	}
	w.Count++

	b, err := json.Marshal(w)
	if err != nil {
		return Decision{}, err
	}
	ttl := resetAt.Sub(now)
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	if err := l.store.Set(ctx, key, string(b), ttl); err != nil {
		return Decision{}, err
	}

	remaining := l.limit - w.Count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   w.Count <= l.limit,
		Count:     w.Count,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// SubjectKey derives the storage key for a subject such as a client IP.
// Raw addresses never appear in key names.
func SubjectKey(subject string) string {
	sum := blake2b.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:16])
}

// ClientIP extracts the client IP from an HTTP request.
// It checks CF-Connecting-IP (set by the edge), then X-Forwarded-For and
// X-Real-IP, then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}

	// X-Forwarded-For is a comma-separated list, first is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
