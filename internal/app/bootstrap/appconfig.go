// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// listener, TLS, logging and CORS; everything below belongs to the site.
type AppConfig struct {
	// Relational store
	DBDriver string // "postgres" or "sqlite"
	DBDSN    string // driver-specific DSN

	// Key-value store for shortlinks, flags and rate-limit windows
	KVBackend     string // "redis", "mongo" or "memory"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDatabase string

	// Assets
	StaticDir  string // static asset origin directory
	ResumePath string // résumé location inside StaticDir

	// Bot verification
	TurnstileSecret    string
	TurnstileVerifyURL string
	ChallengeOrigin    string // allowed by the CSP

	// Gmail notification
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailTokenURL     string
	GmailEndpoint     string
	MailFrom          string
	MailTo            string
	SiteName          string // used in notification subjects

	// Badge
	OpenToWorkDefault string // configured fallback when the flag is unset

	// Contact pipeline
	ContactMaxBody    int64
	ContactRateLimit  int
	ContactRateWindow time.Duration

	// Optional features
	WhoamiEnabled    bool
	TimezoneGreeting bool
	SeedFile         string

	// Per-collaborator deadlines
	TimeoutStore  time.Duration
	TimeoutVerify time.Duration
	TimeoutMail   time.Duration
}
