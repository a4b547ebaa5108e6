// internal/app/features/badge/handler.go
package badge

import (
	"context"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

// CacheControl is sent on every badge; the flag can change at any time.
const CacheControl = "no-cache, no-store, must-revalidate"

// FlagReader reads a raw feature flag. ok is false when the flag is unset.
type FlagReader interface {
	Get(ctx context.Context, name string) (value string, ok bool, err error)
}

type Handler struct {
	Flags   FlagReader
	Default string
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// NewHandler constructs a badge Handler. def is the configured fallback
// used when the flag is absent; empty means models.DefaultOpenToWork.
func NewHandler(flags FlagReader, def string, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{Flags: flags, Default: def, Metrics: m, Log: logger}
}

// Serve handles GET /badge.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	open := h.value(r.Context()) == "true"

	state := "closed"
	if open {
		state = "open"
	}
	if h.Metrics != nil {
		h.Metrics.BadgeRenders.WithLabelValues(state).Inc()
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", CacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(render(open))
}

// value resolves the flag: stored value, then configured default, then
// models.DefaultOpenToWork. A read failure falls through to the defaults.
func (h *Handler) value(ctx context.Context) string {
	if h.Flags != nil {
		fctx, cancel := timeouts.WithTimeout(ctx, timeouts.Store(), h.Log, "badge.flag")
		v, ok, err := h.Flags.Get(fctx, models.FlagOpenToWork)
		cancel()
		switch {
		case err != nil:
			h.Log.Warn("badge: flag read failed, using default", zap.Error(err))
		case ok:
			return v
		}
	}
	if h.Default != "" {
		return h.Default
	}
	return models.DefaultOpenToWork
}
