// Package mailer sends contact notifications through the Gmail API.
//
// Each send is two HTTP steps:
//  1. exchange the long-lived refresh token for an access token at the
//     OAuth2 token endpoint (client id, client secret, refresh token,
//     grant_type=refresh_token)
//  2. post the RFC-822 message, base64url-encoded without padding, to the
//     send endpoint with bearer authorization
//
// A non-success status at either step is returned as an error. Callers
// treat any error as "not delivered".
package mailer

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Default endpoints for Google's OAuth2 token service and the Gmail API.
const (
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	DefaultEndpoint = "https://gmail.googleapis.com/"
)

// Email is a single outbound message.
type Email struct {
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
}

// Config holds the OAuth2 credentials, endpoints and addresses.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
	Endpoint     string
	From         string
	To           string
}

// Gmail delivers Email values using a refresh-token grant.
type Gmail struct {
	cfg Config
	hc  *http.Client
	Log *zap.Logger
}

// NewGmail returns a Gmail sender. hc is the base HTTP client for both
// steps; nil uses http.DefaultClient.
func NewGmail(cfg Config, hc *http.Client, logger *zap.Logger) *Gmail {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Gmail{cfg: cfg, hc: hc, Log: logger}
}

// Configured reports whether credentials and addresses are all present.
func (g *Gmail) Configured() bool {
	c := g.cfg
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "" && c.From != "" && c.To != ""
}

// Recipient is the configured notification address.
func (g *Gmail) Recipient() string { return g.cfg.To }

// Send delivers e. An empty e.To is replaced by the configured recipient.
func (g *Gmail) Send(ctx context.Context, e Email) error {
	if !g.Configured() {
		return fmt.Errorf("mailer: not configured")
	}
	if e.To == "" {
		e.To = g.cfg.To
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.hc)

	tok, err := g.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("mailer: token exchange: %w", err)
	}

	raw, err := EncodeRaw(BuildMessage(g.cfg.From, e))
	if err != nil {
		return fmt.Errorf("mailer: build message: %w", err)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(g.cfg.Endpoint))
	if err != nil {
		return fmt.Errorf("mailer: gmail client: %w", err)
	}

	sent, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}

	if g.Log != nil {
		g.Log.Debug("notification sent", zap.String("gmail_id", sent.Id))
	}
	return nil
}

func (g *Gmail) accessToken(ctx context.Context) (*oauth2.Token, error) {
	oc := &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  g.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return oc.TokenSource(ctx, &oauth2.Token{RefreshToken: g.cfg.RefreshToken}).Token()
}
