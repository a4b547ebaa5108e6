// internal/app/features/resume/handler.go
package resume

import (
	"context"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/outcome"
	"github.com/dalemusser/folio/internal/app/system/secheaders"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultPath is where the résumé lives in the asset tree.
const DefaultPath = "/resume.pdf"

// DownloadRecorder counts résumé downloads.
type DownloadRecorder interface {
	Record(ctx context.Context) (models.Download, error)
}

type Handler struct {
	Downloads DownloadRecorder
	Assets    http.Handler
	Path      string
	Metrics   *metrics.Metrics
	Log       *zap.Logger

	serve http.Handler
}

// NewHandler wraps assets with the security header policy. assetPath is
// the résumé's location inside the asset tree.
func NewHandler(downloads DownloadRecorder, assets http.Handler, policy *secheaders.Policy, assetPath string, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if assetPath == "" {
		assetPath = DefaultPath
	}
	serve := assets
	if policy != nil {
		serve = policy.Middleware(assets)
	}
	return &Handler{
		Downloads: downloads,
		Assets:    assets,
		Path:      assetPath,
		Metrics:   m,
		Log:       logger,
		serve:     serve,
	}
}

// Serve handles GET /resume.pdf. The download is counted first; a counting
// failure is logged and the file is served regardless.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	res := outcome.Run(r.Context(), h.Log, outcome.BestEffort, "resume.download", func(ctx context.Context) error {
		dctx, cancel := timeouts.WithTimeout(ctx, timeouts.Store(), h.Log, "resume.download")
		defer cancel()
		_, err := h.Downloads.Record(dctx)
		return err
	})
	if res.OK() && h.Metrics != nil {
		h.Metrics.Downloads.Inc()
	}

	req := r
	if r.URL.Path != h.Path {
		req = r.Clone(r.Context())
		req.URL.Path = h.Path
		req.URL.RawPath = ""
	}
	h.serve.ServeHTTP(w, req)
}
