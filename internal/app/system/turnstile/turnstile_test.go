package turnstile_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/folio/internal/app/system/turnstile"
)

func TestVerify_SendsFormAndParsesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("secret") != "shh" {
			t.Errorf("secret: got %q", r.PostForm.Get("secret"))
		}
		if r.PostForm.Get("remoteip") != "203.0.113.7" {
			t.Errorf("remoteip: got %q", r.PostForm.Get("remoteip"))
		}
		ok := r.PostForm.Get("response") == "good"
		w.Header().Set("Content-Type", "application/json")
		if ok {
			_, _ = w.Write([]byte(`{"success":true,"hostname":"example.com"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	c := turnstile.New("shh", srv.URL, srv.Client())

	res, err := c.Verify(context.Background(), "good", "203.0.113.7")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !res.Success || res.Hostname != "example.com" {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = c.Verify(context.Background(), "bad", "203.0.113.7")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if res.Success {
		t.Error("expected rejected token")
	}
	if len(res.ErrorCodes) != 1 || res.ErrorCodes[0] != "invalid-input-response" {
		t.Errorf("ErrorCodes: got %v", res.ErrorCodes)
	}
}

func TestVerify_ServerErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := turnstile.New("shh", srv.URL, srv.Client())
	if _, err := c.Verify(context.Background(), "tok", ""); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestNew_DefaultURL(t *testing.T) {
	c := turnstile.New("s", "", nil)
	if c.VerifyURL != turnstile.DefaultVerifyURL {
		t.Errorf("VerifyURL: got %q", c.VerifyURL)
	}
}
