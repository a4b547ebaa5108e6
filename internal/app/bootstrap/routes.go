// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	badgefeature "github.com/dalemusser/folio/internal/app/features/badge"
	contactfeature "github.com/dalemusser/folio/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	golinksfeature "github.com/dalemusser/folio/internal/app/features/golinks"
	healthfeature "github.com/dalemusser/folio/internal/app/features/health"
	resumefeature "github.com/dalemusser/folio/internal/app/features/resume"
	whoamifeature "github.com/dalemusser/folio/internal/app/features/whoami"
	clickstore "github.com/dalemusser/folio/internal/app/store/clicks"
	downloadstore "github.com/dalemusser/folio/internal/app/store/downloads"
	flagstore "github.com/dalemusser/folio/internal/app/store/flags"
	linkstore "github.com/dalemusser/folio/internal/app/store/links"
	submissionstore "github.com/dalemusser/folio/internal/app/store/submissions"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"github.com/dalemusser/folio/internal/app/system/secheaders"
	"github.com/dalemusser/folio/internal/app/system/turnstile"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// contactRatePrefix namespaces contact rate-limit windows in the KV store.
const contactRatePrefix = "rl:contact:"

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, connections, schema setup and
// Startup have completed. Static assets come from StaticDir on disk.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	assets := fileserver.Handler("/", appCfg.StaticDir)
	return NewRouter(appCfg, deps, assets, logger)
}

// NewRouter mounts every feature over deps and serves anything unmatched
// from assets. Dynamic routes are matched first; the asset fallthrough
// gets the security headers and the content-type cache policy.
func NewRouter(appCfg AppConfig, deps DBDeps, assets http.Handler, logger *zap.Logger) (http.Handler, error) {
	sqlDB, err := deps.DB.DB()
	if err != nil {
		logger.Error("relational store handle unavailable", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	m := metrics.New()
	policy := secheaders.New(secheaders.Options{ChallengeOrigin: appCfg.ChallengeOrigin})
	// Upper bound for outbound calls; per-call deadlines come from timeouts.
	outbound := &http.Client{Timeout: 30 * time.Second}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(errLog.Recoverer)

	// Liveness for load balancers, metrics for scraping
	healthHandler := healthfeature.NewHandler(sqlDB, deps.KV, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Contact pipeline
	contactHandler := contactfeature.NewHandler(contactfeature.Deps{
		Submissions:      submissionstore.New(deps.DB),
		Limiter:          ratelimit.New(deps.KV, contactRatePrefix, appCfg.ContactRateLimit, appCfg.ContactRateWindow),
		Verifier:         turnstile.New(appCfg.TurnstileSecret, appCfg.TurnstileVerifyURL, outbound),
		Notifier:         mailer.NewGmail(mailerConfig(appCfg), outbound, logger),
		Metrics:          m,
		ErrLog:           errLog,
		MaxBody:          appCfg.ContactMaxBody,
		SiteName:         appCfg.SiteName,
		TimezoneGreeting: appCfg.TimezoneGreeting,
	}, logger)
	r.Mount("/contact", contactfeature.Routes(contactHandler))

	// Shortlinks
	golinksHandler := golinksfeature.NewHandler(linkstore.New(deps.KV), clickstore.New(deps.DB), m, errLog, logger)
	r.Mount("/go", golinksfeature.Routes(golinksHandler))

	// Résumé download
	resumeHandler := resumefeature.NewHandler(downloadstore.New(deps.DB), assets, policy, appCfg.ResumePath, m, logger)
	r.Mount("/resume.pdf", resumefeature.Routes(resumeHandler))

	// Status badge
	badgeHandler := badgefeature.NewHandler(flagstore.New(deps.KV), appCfg.OpenToWorkDefault, m, logger)
	r.Mount("/badge", badgefeature.Routes(badgeHandler))

	if appCfg.WhoamiEnabled {
		whoamiHandler := whoamifeature.NewHandler(logger)
		r.Mount("/whoami", whoamifeature.Routes(whoamiHandler))
	}

	// Everything else is a static asset
	static := policy.Middleware(assets)
	r.Method(http.MethodGet, "/*", static)
	r.Method(http.MethodHead, "/*", static)

	return r, nil
}
