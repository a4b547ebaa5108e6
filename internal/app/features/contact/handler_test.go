package contact_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/folio/internal/app/features/contact"
	"github.com/dalemusser/folio/internal/app/store/kv"
	submissionstore "github.com/dalemusser/folio/internal/app/store/submissions"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"github.com/dalemusser/folio/internal/app/system/turnstile"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/folio/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	result turnstile.Result
	err    error
	calls  int
}

func (f *fakeVerifier) Verify(ctx context.Context, token, remoteIP string) (turnstile.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeNotifier struct {
	configured bool
	err        error
	sent       []mailer.Email
}

func (f *fakeNotifier) Configured() bool { return f.configured }

func (f *fakeNotifier) Send(ctx context.Context, e mailer.Email) error {
	f.sent = append(f.sent, e)
	return f.err
}

type fixture struct {
	db       *gorm.DB
	clock    time.Time
	verifier *fakeVerifier
	notifier *fakeNotifier
	handler  *contact.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:       testutil.SetupTestDB(t),
		clock:    time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC),
		verifier: &fakeVerifier{result: turnstile.Result{Success: true}},
		notifier: &fakeNotifier{configured: true},
	}
	now := func() time.Time { return f.clock }
	limiter := ratelimit.New(kv.NewMemoryWithClock(now), "rl:contact:", 5, 10*time.Minute).WithClock(now)
	f.handler = contact.NewHandler(contact.Deps{
		Submissions: submissionstore.New(f.db),
		Limiter:     limiter,
		Verifier:    f.verifier,
		Notifier:    f.notifier,
		SiteName:    "folio",
	}, zap.NewNop()).WithClock(now)
	return f
}

func (f *fixture) post(body string) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.handler.Submit(rec, testutil.NewJSONRequest(http.MethodPost, "/contact", body))
	return rec
}

func (f *fixture) rows(t *testing.T) int64 {
	t.Helper()
	return testutil.CountRows(t, f.db, "submissions")
}

type response struct {
	OK        bool   `json:"ok"`
	Delivered bool   `json:"delivered"`
	Message   string `json:"message"`
	Error     string `json:"error"`
	Field     string `json:"field"`
}

func decode(t *testing.T, rec *testutil.ResponseRecorder) response {
	t.Helper()
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return resp
}

func payload(name, email, message, token string) string {
	b, _ := json.Marshal(map[string]string{
		"name": name, "email": email, "message": message, "token": token,
	})
	return string(b)
}

const validBody = `{"name":"Ada Lovelace","email":"ada@example.com","message":"Hello there","token":"tok"}`

func TestSubmit_Accepted(t *testing.T) {
	f := newFixture(t)

	rec := f.post(validBody)
	rec.AssertStatus(t, http.StatusOK)

	resp := decode(t, rec)
	if !resp.OK || !resp.Delivered {
		t.Errorf("expected ok and delivered, got %+v", resp)
	}
	if !strings.Contains(resp.Message, "Ada Lovelace") {
		t.Errorf("acknowledgement should name the sender: %q", resp.Message)
	}

	var sub models.Submission
	if err := f.db.First(&sub).Error; err != nil {
		t.Fatalf("load submission: %v", err)
	}
	if sub.Name != "Ada Lovelace" || sub.Email != "ada@example.com" || sub.Message != "Hello there" {
		t.Errorf("stored fields differ: %+v", sub)
	}
	if sub.IP != "203.0.113.7" || sub.UserAgent != "folio-test/1.0" {
		t.Errorf("request metadata: ip=%q ua=%q", sub.IP, sub.UserAgent)
	}
	if f.rows(t) != 1 {
		t.Errorf("expected exactly one row")
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.sent))
	}
	if got := f.notifier.sent[0].ReplyTo; got != "ada@example.com" {
		t.Errorf("Reply-To: got %q", got)
	}
}

func TestSubmit_Rejected400(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"not json", `not json`, ""},
		{"missing name", payload("", "ada@example.com", "hi", "tok"), "name"},
		{"missing email", payload("Ada", "", "hi", "tok"), "email"},
		{"missing message", payload("Ada", "ada@example.com", "", "tok"), "message"},
		{"missing token", payload("Ada", "ada@example.com", "hi", ""), "token"},
		{"name too long", payload(strings.Repeat("n", 201), "ada@example.com", "hi", "tok"), "name"},
		{"email too long", payload("Ada", strings.Repeat("e", 310)+"@example.com", "hi", "tok"), "email"},
		{"message too long", payload("Ada", "ada@example.com", strings.Repeat("m", 5001), "tok"), "message"},
		{"bad email", payload("Ada", "not-an-email", "hi", "tok"), "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.post(tt.body)
			rec.AssertStatus(t, http.StatusBadRequest)

			resp := decode(t, rec)
			if resp.OK || resp.Error == "" {
				t.Errorf("expected a described rejection, got %+v", resp)
			}
			if resp.Field != tt.field {
				t.Errorf("field: got %q, want %q", resp.Field, tt.field)
			}
			if f.rows(t) != 0 {
				t.Errorf("rejected request must not create a row")
			}
			if f.verifier.calls != 0 {
				t.Errorf("verification must not run for invalid input")
			}
		})
	}
}

func TestSubmit_LengthCapsAreInclusive(t *testing.T) {
	f := newFixture(t)

	body := payload(strings.Repeat("n", 200), "ada@example.com", strings.Repeat("m", 5000), "tok")
	f.post(body).AssertStatus(t, http.StatusOK)

	if f.rows(t) != 1 {
		t.Errorf("values at the cap should be accepted")
	}
}

func TestSubmit_DeclaredLengthTooLarge(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(http.MethodPost, "/contact", validBody)
	req.ContentLength = contact.DefaultMaxBody + 1
	rec := testutil.NewRecorder()
	f.handler.Submit(rec, req)

	rec.AssertStatus(t, http.StatusRequestEntityTooLarge)
	if f.rows(t) != 0 {
		t.Errorf("oversized request must not create a row")
	}
}

func TestSubmit_StreamedBodyTooLarge(t *testing.T) {
	f := newFixture(t)

	big := payload("Ada", "ada@example.com", strings.Repeat("m", int(contact.DefaultMaxBody)), "tok")
	req := testutil.NewJSONRequest(http.MethodPost, "/contact", big)
	req.ContentLength = -1
	rec := testutil.NewRecorder()
	f.handler.Submit(rec, req)

	rec.AssertStatus(t, http.StatusRequestEntityTooLarge)
}

func TestSubmit_RateLimit(t *testing.T) {
	f := newFixture(t)

	// Invalid bodies still consume quota.
	for i := 0; i < 4; i++ {
		f.post(`{}`).AssertStatus(t, http.StatusBadRequest)
	}
	f.post(validBody).AssertStatus(t, http.StatusOK)

	rec := f.post(validBody)
	rec.AssertStatus(t, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Errorf("429 should carry Retry-After")
	}
	if f.rows(t) != 1 {
		t.Errorf("only the admitted valid request should be stored, got %d", f.rows(t))
	}

	f.clock = f.clock.Add(10 * time.Minute)
	f.post(validBody).AssertStatus(t, http.StatusOK)
}

func TestSubmit_RateLimitIsPerIP(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.post(validBody)
	}

	req := testutil.NewJSONRequest(http.MethodPost, "/contact", validBody)
	req.Header.Set("CF-Connecting-IP", "198.51.100.9")
	rec := testutil.NewRecorder()
	f.handler.Submit(rec, req)

	rec.AssertStatus(t, http.StatusOK)
}

func TestSubmit_BotVerificationFailed(t *testing.T) {
	f := newFixture(t)
	f.verifier.result = turnstile.Result{Success: false, ErrorCodes: []string{"invalid-input-response"}}

	rec := f.post(validBody)
	rec.AssertStatus(t, http.StatusBadRequest)

	if resp := decode(t, rec); resp.Field != "token" {
		t.Errorf("field: got %q", resp.Field)
	}
	if f.rows(t) != 0 {
		t.Errorf("unverified request must not create a row")
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("no notification for unverified request")
	}
}

func TestSubmit_VerifierUnavailable(t *testing.T) {
	f := newFixture(t)
	f.verifier.err = fmt.Errorf("dial tcp: connection refused")

	rec := f.post(validBody)
	rec.AssertStatus(t, http.StatusInternalServerError)

	if strings.Contains(rec.Body.String(), "refused") {
		t.Errorf("internal detail leaked: %q", rec.Body.String())
	}
	if f.rows(t) != 0 {
		t.Errorf("no row without verification")
	}
}

func TestSubmit_NotificationFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("gmail: 503")

	rec := f.post(validBody)
	rec.AssertStatus(t, http.StatusOK)

	resp := decode(t, rec)
	if !resp.OK || resp.Delivered {
		t.Errorf("expected ok:true delivered:false, got %+v", resp)
	}
	if f.rows(t) != 1 {
		t.Errorf("submission should be stored regardless of delivery")
	}
}

func TestSubmit_NotifierNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.notifier.configured = false

	resp := decode(t, f.post(validBody))
	if !resp.OK || resp.Delivered {
		t.Errorf("expected ok:true delivered:false, got %+v", resp)
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("unconfigured notifier must not be called")
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	f := newFixture(t)
	testutil.BreakTable(t, f.db, "submissions")

	rec := f.post(validBody)
	rec.AssertStatus(t, http.StatusInternalServerError)

	if strings.Contains(rec.Body.String(), "submissions") {
		t.Errorf("internal detail leaked: %q", rec.Body.String())
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("no notification when the submission was not stored")
	}
}

func TestSubmit_AcknowledgementIsPlainText(t *testing.T) {
	f := newFixture(t)

	resp := decode(t, f.post(payload("<b>Ada</b>", "ada@example.com", "hi", "tok")))
	if strings.Contains(resp.Message, "<b>") {
		t.Errorf("markup should be stripped from the acknowledgement: %q", resp.Message)
	}

	var sub models.Submission
	if err := f.db.First(&sub).Error; err != nil {
		t.Fatal(err)
	}
	if sub.Name != "<b>Ada</b>" {
		t.Errorf("stored name must be the literal input, got %q", sub.Name)
	}
}

func TestSubmit_TimezoneGreeting(t *testing.T) {
	f := newFixture(t)
	f.handler.TimezoneGreeting = true

	req := testutil.NewJSONRequest(http.MethodPost, "/contact", validBody)
	req.Header.Set(contact.TimezoneHeader, "UTC")
	rec := testutil.NewRecorder()
	f.handler.Submit(rec, req)

	if resp := decode(t, rec); !strings.HasPrefix(resp.Message, "Good afternoon") {
		t.Errorf("greeting: got %q", resp.Message)
	}

	f.handler.TimezoneGreeting = false
	if resp := decode(t, f.post(validBody)); !strings.HasPrefix(resp.Message, "Thanks") {
		t.Errorf("default greeting: got %q", resp.Message)
	}
}

func TestRoutes_PostOnly(t *testing.T) {
	f := newFixture(t)
	r := contact.Routes(f.handler)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/", ""))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", validBody))
	rec.AssertStatus(t, http.StatusOK)
}
