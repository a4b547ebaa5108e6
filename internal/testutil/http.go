package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewJSONRequest creates a request with a JSON body, a fixed remote address
// and a user agent.
func NewJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "folio-test/1.0")
	req.RemoteAddr = "203.0.113.7:51234"
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %q)", r.Code, expected, r.Body.String())
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t testing.TB, expectedLocation string) {
	t.Helper()
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t testing.TB, expected string) {
	t.Helper()
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %q", expected, r.Body.String())
	}
}

// AssertHeader checks a response header value.
func (r *ResponseRecorder) AssertHeader(t testing.TB, name, expected string) {
	t.Helper()
	if got := r.Header().Get(name); got != expected {
		t.Errorf("header %s: got %q, want %q", name, got, expected)
	}
}
