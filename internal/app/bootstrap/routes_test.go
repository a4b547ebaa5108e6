package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	linkstore "github.com/dalemusser/folio/internal/app/store/links"
	"github.com/dalemusser/folio/internal/app/store/kv"
	"github.com/dalemusser/folio/internal/app/system/secheaders"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
)

func testAppConfig(verifyURL string) AppConfig {
	return AppConfig{
		DBDriver:           driverSQLite,
		DBDSN:              "file::memory:",
		KVBackend:          kv.BackendMemory,
		StaticDir:          "public",
		ResumePath:         "/resume.pdf",
		TurnstileSecret:    "secret",
		TurnstileVerifyURL: verifyURL,
		ChallengeOrigin:    secheaders.DefaultOrigin,
		SiteName:           "folio",
		ContactMaxBody:     32 << 10,
		ContactRateLimit:   5,
		ContactRateWindow:  10 * time.Minute,
		TimeoutStore:       5 * time.Second,
		TimeoutVerify:      10 * time.Second,
		TimeoutMail:        15 * time.Second,
	}
}

var testAssets = fstest.MapFS{
	"index.html": {Data: []byte("<!doctype html><title>folio</title>")},
	"app.js":     {Data: []byte("console.log('hi')")},
	"resume.pdf": {Data: []byte("%PDF-1.7 resume")},
}

type harness struct {
	router http.Handler
	deps   DBDeps
}

func newHarness(t *testing.T, mutate func(*AppConfig)) *harness {
	t.Helper()
	verify := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(verify.Close)

	cfg := testAppConfig(verify.URL)
	if mutate != nil {
		mutate(&cfg)
	}
	deps := DBDeps{DB: testutil.SetupTestDB(t), KV: kv.NewMemory()}

	router, err := NewRouter(cfg, deps, http.FileServer(http.FS(testAssets)), zap.NewNop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return &harness{router: router, deps: deps}
}

func (h *harness) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_StaticFallthrough(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<title>folio</title>")
	rec.AssertHeader(t, "Cache-Control", secheaders.NoStore)
	rec.AssertHeader(t, "X-Frame-Options", "DENY")
	rec.AssertHeader(t, "X-Content-Type-Options", "nosniff")
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, secheaders.DefaultOrigin) {
		t.Errorf("CSP should allow the challenge origin: %q", csp)
	}

	rec = h.do(httptest.NewRequest(http.MethodGet, "/app.js", nil))
	rec.AssertStatus(t, http.StatusOK)
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("script should be immutable, got %q", cc)
	}

	h.do(httptest.NewRequest(http.MethodGet, "/missing.css", nil)).AssertStatus(t, http.StatusNotFound)
}

func TestRouter_ContactEndToEnd(t *testing.T) {
	h := newHarness(t, nil)

	body := `{"name":"Ada","email":"ada@example.com","message":"Hello","token":"tok"}`
	rec := h.do(testutil.NewJSONRequest(http.MethodPost, "/contact", body))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		OK        bool   `json:"ok"`
		Delivered bool   `json:"delivered"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// No Gmail credentials are configured.
	if !resp.OK || resp.Delivered || resp.Message == "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if n := testutil.CountRows(t, h.deps.DB, "submissions"); n != 1 {
		t.Errorf("submissions: got %d", n)
	}

	for i := 0; i < 4; i++ {
		h.do(testutil.NewJSONRequest(http.MethodPost, "/contact", body))
	}
	h.do(testutil.NewJSONRequest(http.MethodPost, "/contact", body)).AssertStatus(t, http.StatusTooManyRequests)
}

func TestRouter_Shortlink(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := linkstore.New(h.deps.KV).Put(ctx, "abc", "https://example.com"); err != nil {
		t.Fatal(err)
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/go/abc", nil))
	rec.AssertStatus(t, http.StatusFound)
	rec.AssertRedirect(t, "https://example.com")

	h.do(httptest.NewRequest(http.MethodGet, "/go/doesnotexist", nil)).AssertStatus(t, http.StatusNotFound)

	if n := testutil.CountRows(t, h.deps.DB, "clicks"); n != 1 {
		t.Errorf("clicks: got %d", n)
	}
}

func TestRouter_ResumeAndBadge(t *testing.T) {
	h := newHarness(t, func(c *AppConfig) { c.OpenToWorkDefault = "false" })

	rec := h.do(httptest.NewRequest(http.MethodGet, "/resume.pdf", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "%PDF-1.7 resume")
	if n := testutil.CountRows(t, h.deps.DB, "downloads"); n != 1 {
		t.Errorf("downloads: got %d", n)
	}

	rec = h.do(httptest.NewRequest(http.MethodGet, "/badge", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertHeader(t, "Content-Type", "image/svg+xml")
	rec.AssertContains(t, "not looking")
}

func TestRouter_WhoamiToggle(t *testing.T) {
	off := newHarness(t, nil)
	rec := off.do(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if ct := rec.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		t.Errorf("whoami should not be mounted when disabled")
	}

	on := newHarness(t, func(c *AppConfig) { c.WhoamiEnabled = true })
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("CF-IPCountry", "NZ")
	rec = on.do(req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"country":"NZ"`)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newHarness(t, nil)

	h.do(httptest.NewRequest(http.MethodGet, "/health", nil)).AssertStatus(t, http.StatusOK)

	h.do(httptest.NewRequest(http.MethodGet, "/badge", nil))
	rec := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "folio_badge_renders_total")
}
