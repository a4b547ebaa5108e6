// Package turnstile verifies bot-challenge tokens with the challenge
// provider's siteverify endpoint.
package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultVerifyURL is Cloudflare's siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Result is the provider's verdict.
type Result struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
	Action     string   `json:"action"`
}

// Client calls the siteverify endpoint with a shared secret.
type Client struct {
	HTTP      *http.Client
	VerifyURL string
	Secret    string
}

// New returns a Client. An empty verifyURL selects DefaultVerifyURL.
func New(secret, verifyURL string, hc *http.Client) *Client {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{HTTP: hc, VerifyURL: verifyURL, Secret: secret}
}

// Verify submits token and the caller's IP. It returns an error only when
// no verdict could be obtained; a rejected token is Result{Success: false}.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("turnstile: siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("turnstile: siteverify returned %s", resp.Status)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("turnstile: decode siteverify response: %w", err)
	}
	return res, nil
}
