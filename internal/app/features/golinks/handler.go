// internal/app/features/golinks/handler.go
package golinks

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/folio/internal/app/features/errors"
	"github.com/dalemusser/folio/internal/app/store/kv"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/outcome"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Resolver maps a short key to its destination.
type Resolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// ClickStore records redirect events.
type ClickStore interface {
	Create(ctx context.Context, c *models.Click) error
}

type Handler struct {
	Links   Resolver
	Clicks  ClickStore
	Metrics *metrics.Metrics
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(links Resolver, clicks ClickStore, m *metrics.Metrics, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if errLog == nil {
		errLog = uierrors.NewErrorLogger(logger)
	}
	return &Handler{Links: links, Clicks: clicks, Metrics: m, ErrLog: errLog, Log: logger}
}

// Redirect handles GET /go/{key}.
//
// A hit records a Click and answers 302. The click is recorded before the
// redirect is written; a recording failure is logged and the redirect
// still goes out.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		h.count("miss")
		uierrors.NotFound(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.Log, "golinks.resolve")
	target, err := h.Links.Resolve(ctx, key)
	cancel()
	switch {
	case errors.Is(err, kv.ErrNotFound):
		h.count("miss")
		uierrors.NotFound(w)
		return
	case err != nil:
		h.count("error")
		h.ErrLog.InternalError(w, r, "golinks.resolve", err)
		return
	}

	click := &models.Click{
		ShortKey:  key,
		TargetURL: target,
		Referrer:  referrer(r),
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		CreatedAt: time.Now().UTC(),
	}
	outcome.Run(r.Context(), h.Log, outcome.BestEffort, "golinks.click", func(ctx context.Context) error {
		cctx, cancel := timeouts.WithTimeout(ctx, timeouts.Store(), h.Log, "golinks.click")
		defer cancel()
		return h.Clicks.Create(cctx, click)
	})

	h.count("hit")
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}

// referrer prefers the explicit ref query parameter over the Referer header.
func referrer(r *http.Request) string {
	if ref := r.URL.Query().Get("ref"); ref != "" {
		return ref
	}
	return r.Referer()
}

func (h *Handler) count(result string) {
	if h.Metrics != nil {
		h.Metrics.Redirects.WithLabelValues(result).Inc()
	}
}
