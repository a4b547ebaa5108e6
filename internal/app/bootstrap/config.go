// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/folio/internal/app/features/contact"
	"github.com/dalemusser/folio/internal/app/features/resume"
	"github.com/dalemusser/folio/internal/app/store/kv"
	"github.com/dalemusser/folio/internal/app/system/mailer"
	"github.com/dalemusser/folio/internal/app/system/secheaders"
	"github.com/dalemusser/folio/internal/app/system/turnstile"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// appConfigKeys defines the configuration keys for folio.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: db_dsn, kv_backend, etc.
//   - Environment variables: FOLIO_DB_DSN, FOLIO_KV_BACKEND, etc.
//   - Command-line flags: --db_dsn, --kv_backend, etc.
var appConfigKeys = []config.AppKey{
	{Name: "db_driver", Default: driverSQLite, Desc: "Relational store driver: 'postgres' or 'sqlite'"},
	{Name: "db_dsn", Default: "folio.db", Desc: "Relational store DSN"},

	// Key-value store
	{Name: "kv_backend", Default: kv.BackendMemory, Desc: "Key-value backend: 'redis', 'mongo' or 'memory'"},
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis logical database"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (kv_backend=mongo)"},
	{Name: "mongo_database", Default: "folio", Desc: "MongoDB database name (kv_backend=mongo)"},

	// Assets
	{Name: "static_dir", Default: "public", Desc: "Static asset directory"},
	{Name: "resume_path", Default: resume.DefaultPath, Desc: "Résumé path inside static_dir"},

	// Bot verification
	{Name: "turnstile_secret", Default: "", Desc: "Turnstile shared secret"},
	{Name: "turnstile_verify_url", Default: turnstile.DefaultVerifyURL, Desc: "Turnstile siteverify endpoint"},
	{Name: "challenge_origin", Default: secheaders.DefaultOrigin, Desc: "Challenge widget origin allowed by the CSP"},

	// Gmail notification
	{Name: "gmail_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "gmail_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "gmail_refresh_token", Default: "", Desc: "Long-lived refresh token for the sending account"},
	{Name: "gmail_token_url", Default: mailer.DefaultTokenURL, Desc: "OAuth2 token endpoint"},
	{Name: "gmail_endpoint", Default: mailer.DefaultEndpoint, Desc: "Gmail API base URL"},
	{Name: "mail_from", Default: "", Desc: "Notification sender address"},
	{Name: "mail_to", Default: "", Desc: "Notification recipient address"},
	{Name: "site_name", Default: "folio", Desc: "Site name used in notification subjects"},

	// Badge
	{Name: "open_to_work_default", Default: "", Desc: "Badge value when the open_to_work flag is unset"},

	// Contact pipeline
	{Name: "contact_max_body", Default: int(contact.DefaultMaxBody), Desc: "Contact body cap in bytes"},
	{Name: "contact_rate_limit", Default: 5, Desc: "Contact attempts allowed per window per IP"},
	{Name: "contact_rate_window", Default: "10m", Desc: "Contact rate-limit window (e.g., 10m, 1h)"},

	// Optional features
	{Name: "whoami_enabled", Default: false, Desc: "Mount GET /whoami"},
	{Name: "timezone_greeting", Default: false, Desc: "Greet contact submitters by local time of day"},
	{Name: "seed_file", Default: "", Desc: "JSON file of shortlinks and flags applied at startup"},

	// Timeouts
	{Name: "timeout_store", Default: "5s", Desc: "Deadline for store and key-value calls"},
	{Name: "timeout_verify", Default: "10s", Desc: "Deadline for the bot-verification call"},
	{Name: "timeout_mail", Default: "15s", Desc: "Deadline for the notification send"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges flags > env (FOLIO_*) > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FOLIO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		DBDriver: appValues.String("db_driver"),
		DBDSN:    appValues.String("db_dsn"),

		KVBackend:     appValues.String("kv_backend"),
		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		StaticDir:  appValues.String("static_dir"),
		ResumePath: appValues.String("resume_path"),

		TurnstileSecret:    appValues.String("turnstile_secret"),
		TurnstileVerifyURL: appValues.String("turnstile_verify_url"),
		ChallengeOrigin:    appValues.String("challenge_origin"),

		GmailClientID:     appValues.String("gmail_client_id"),
		GmailClientSecret: appValues.String("gmail_client_secret"),
		GmailRefreshToken: appValues.String("gmail_refresh_token"),
		GmailTokenURL:     appValues.String("gmail_token_url"),
		GmailEndpoint:     appValues.String("gmail_endpoint"),
		MailFrom:          appValues.String("mail_from"),
		MailTo:            appValues.String("mail_to"),
		SiteName:          appValues.String("site_name"),

		OpenToWorkDefault: appValues.String("open_to_work_default"),

		ContactMaxBody:    int64(appValues.Int("contact_max_body")),
		ContactRateLimit:  appValues.Int("contact_rate_limit"),
		ContactRateWindow: appValues.Duration("contact_rate_window", 10*time.Minute),

		WhoamiEnabled:    appValues.Bool("whoami_enabled"),
		TimezoneGreeting: appValues.Bool("timezone_greeting"),
		SeedFile:         appValues.String("seed_file"),

		TimeoutStore:  appValues.Duration("timeout_store", 5*time.Second),
		TimeoutVerify: appValues.Duration("timeout_verify", 10*time.Second),
		TimeoutMail:   appValues.Duration("timeout_mail", 15*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Missing notification credentials are not fatal; the contact pipeline
// stores submissions and reports delivered:false.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateAppConfig(appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}

	if appCfg.TurnstileSecret == "" {
		if coreCfg != nil && coreCfg.Env == "prod" {
			return fmt.Errorf("turnstile_secret is required in prod")
		}
		logger.Warn("turnstile_secret is empty; every contact submission will fail verification")
	}

	gmail := mailer.NewGmail(mailerConfig(appCfg), nil, logger)
	if !gmail.Configured() {
		logger.Warn("gmail notification not configured; submissions will be stored only")
	}
	return nil
}

// validateAppConfig holds the checks that do not depend on the environment.
func validateAppConfig(appCfg AppConfig) error {
	switch appCfg.DBDriver {
	case driverPostgres, driverSQLite:
	default:
		return fmt.Errorf("unknown db_driver %q (want %q or %q)", appCfg.DBDriver, driverPostgres, driverSQLite)
	}
	if appCfg.DBDSN == "" {
		return fmt.Errorf("db_dsn is required")
	}

	if !kv.ValidBackend(appCfg.KVBackend) {
		return fmt.Errorf("unknown kv_backend %q", appCfg.KVBackend)
	}
	if appCfg.KVBackend == kv.BackendMongo {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	if appCfg.ContactMaxBody <= 0 {
		return fmt.Errorf("contact_max_body must be positive")
	}
	if appCfg.ContactRateLimit <= 0 {
		return fmt.Errorf("contact_rate_limit must be positive")
	}
	if appCfg.ContactRateWindow <= 0 {
		return fmt.Errorf("contact_rate_window must be positive")
	}
	if appCfg.TimeoutStore <= 0 || appCfg.TimeoutVerify <= 0 || appCfg.TimeoutMail <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func mailerConfig(appCfg AppConfig) mailer.Config {
	return mailer.Config{
		ClientID:     appCfg.GmailClientID,
		ClientSecret: appCfg.GmailClientSecret,
		RefreshToken: appCfg.GmailRefreshToken,
		TokenURL:     appCfg.GmailTokenURL,
		Endpoint:     appCfg.GmailEndpoint,
		From:         appCfg.MailFrom,
		To:           appCfg.MailTo,
	}
}
