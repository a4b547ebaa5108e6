// internal/app/features/contact/handler.go
package contact

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/folio/internal/app/features/errors"
	"github.com/dalemusser/folio/internal/app/system/inputval"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/outcome"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/app/system/turnstile"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultMaxBody is the request body cap in bytes.
const DefaultMaxBody int64 = 32 << 10

// SubmissionStore persists accepted submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *models.Submission) error
}

// Limiter budgets attempts per client.
type Limiter interface {
	Allow(ctx context.Context, subject string) (ratelimit.Decision, error)
}

// Verifier checks a challenge token with the bot-verification service.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (turnstile.Result, error)
}

// Notifier delivers the owner notification.
type Notifier interface {
	Configured() bool
	Send(ctx context.Context, e mailer.Email) error
}

// Deps are the collaborators of the contact pipeline.
type Deps struct {
	Submissions SubmissionStore
	Limiter     Limiter
	Verifier    Verifier
	Notifier    Notifier
	Metrics     *metrics.Metrics
	ErrLog      *uierrors.ErrorLogger

	MaxBody          int64
	SiteName         string
	TimezoneGreeting bool
}

type Handler struct {
	Deps
	Log *zap.Logger

	now func() time.Time
}

func NewHandler(deps Deps, logger *zap.Logger) *Handler {
	if deps.MaxBody <= 0 {
		deps.MaxBody = DefaultMaxBody
	}
	if deps.ErrLog == nil {
		deps.ErrLog = uierrors.NewErrorLogger(logger)
	}
	return &Handler{Deps: deps, Log: logger, now: time.Now}
}

// WithClock overrides the clock used for timestamps and greetings.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

type submitResponse struct {
	OK        bool   `json:"ok"`
	Delivered bool   `json:"delivered"`
	Message   string `json:"message"`
}

// Submit handles POST /contact.
//
// Order of checks: size, rate budget, shape, bot verification. Each
// rejection returns before anything is written except rate-limit quota.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.MaxBody {
		h.count(metrics.ContactTooLarge)
		uierrors.Reject(w, http.StatusRequestEntityTooLarge, "", "Request body is too large.")
		return
	}

	ip := ratelimit.ClientIP(r)

	lctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Store(), h.Log, "contact.ratelimit")
	decision, err := h.Limiter.Allow(lctx, ip)
	cancel()
	if err != nil {
		h.count(metrics.ContactError)
		h.ErrLog.InternalJSON(w, r, "contact.ratelimit", err)
		return
	}
	if !decision.Allowed {
		h.count(metrics.ContactRateLimited)
		retry := int(decision.ResetAt.Sub(h.now()).Seconds()) + 1
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		uierrors.Reject(w, http.StatusTooManyRequests, "", "Too many requests. Please try again later.")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.count(metrics.ContactTooLarge)
			uierrors.Reject(w, http.StatusRequestEntityTooLarge, "", "Request body is too large.")
			return
		}
		h.count(metrics.ContactInvalid)
		uierrors.Reject(w, http.StatusBadRequest, "", "Request body could not be read.")
		return
	}

	c, err := inputval.DecodeContact(body)
	if err != nil {
		var rej *inputval.Rejection
		if errors.As(err, &rej) {
			h.count(metrics.ContactInvalid)
			uierrors.Reject(w, rej.Status, rej.Field, rej.Message)
			return
		}
		h.count(metrics.ContactError)
		h.ErrLog.InternalJSON(w, r, "contact.decode", err)
		return
	}

	vctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Verify(), h.Log, "contact.verify")
	res, err := h.Verifier.Verify(vctx, c.Token, ip)
	cancel()
	if err != nil {
		h.count(metrics.ContactError)
		h.ErrLog.InternalJSON(w, r, "contact.verify", err)
		return
	}
	if !res.Success {
		h.count(metrics.ContactBotRejected)
		h.Log.Info("contact: bot verification failed",
			zap.Strings("error_codes", res.ErrorCodes))
		uierrors.Reject(w, http.StatusBadRequest, "token", "Bot verification failed.")
		return
	}

	sub := &models.Submission{
		Name:      c.Name,
		Email:     c.Email,
		Message:   c.Message,
		IP:        ip,
		UserAgent: r.UserAgent(),
		CreatedAt: h.now().UTC(),
	}
	stored := outcome.Run(r.Context(), h.Log, outcome.Critical, "contact.store", func(ctx context.Context) error {
		sctx, cancel := timeouts.WithTimeout(ctx, timeouts.Store(), h.Log, "contact.store")
		defer cancel()
		return h.Submissions.Create(sctx, sub)
	})
	if stored.Fatal() {
		h.count(metrics.ContactError)
		h.ErrLog.InternalJSON(w, r, stored.Op, stored.Err)
		return
	}
	h.count(metrics.ContactAccepted)

	delivered := h.notify(r.Context(), sub)

	uierrors.WriteJSON(w, http.StatusOK, submitResponse{
		OK:        true,
		Delivered: delivered,
		Message:   h.acknowledge(r, c.Name),
	})
}

// notify sends the owner notification. Failures only flip delivered.
func (h *Handler) notify(ctx context.Context, sub *models.Submission) bool {
	if h.Notifier == nil || !h.Notifier.Configured() {
		h.Log.Info("contact: notifier not configured, submission stored only",
			zap.Uint("submission_id", sub.ID))
		h.countDelivery(false)
		return false
	}

	email := mailer.BuildContactEmail(mailer.ContactEmailData{
		SiteName:   h.SiteName,
		Name:       sub.Name,
		Email:      sub.Email,
		Message:    sub.Message,
		IP:         sub.IP,
		UserAgent:  sub.UserAgent,
		ReceivedAt: sub.CreatedAt,
	})
	sent := outcome.Run(ctx, h.Log, outcome.BestEffort, "contact.notify", func(ctx context.Context) error {
		mctx, cancel := timeouts.WithTimeout(ctx, timeouts.Mail(), h.Log, "contact.notify")
		defer cancel()
		return h.Notifier.Send(mctx, email)
	})
	h.countDelivery(sent.OK())
	return sent.OK()
}

func (h *Handler) count(result string) {
	if h.Metrics != nil {
		h.Metrics.ContactSubmissions.WithLabelValues(result).Inc()
	}
}

func (h *Handler) countDelivery(ok bool) {
	if h.Metrics != nil {
		h.Metrics.Notifications.WithLabelValues(strconv.FormatBool(ok)).Inc()
	}
}
