// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the registry.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: PARTYREG_MONGO_URI, PARTYREG_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "partyreg", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "partyreg-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime (e.g., 12h, 30m)"},

	{Name: "csrf_key", Default: "dev-only-32-byte-csrf-key-0123456", Desc: "CSRF token signing key (32 bytes)"},

	{Name: "site_name", Default: "የአባላት መዝገብ", Desc: "Site name shown in page chrome and credential messages"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL used in credential emails"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@partyreg.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Membership Registry", Desc: "From display name"},

	// SMS gateway configuration
	{Name: "sms_account_sid", Default: "", Desc: "SMS gateway account SID"},
	{Name: "sms_auth_token", Default: "", Desc: "SMS gateway auth token"},
	{Name: "sms_from", Default: "", Desc: "SMS sending number (E.164)"},

	// Membership ID allocation
	{Name: "alloc_retry_budget", Default: 4, Desc: "Attempts to allocate a unique membership ID before giving up"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, PARTYREG_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PARTYREG", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		SMSAccountSID: appValues.String("sms_account_sid"),
		SMSAuthToken:  appValues.String("sms_auth_token"),
		SMSFrom:       appValues.String("sms_from"),

		AllocRetryBudget: appValues.Int("alloc_retry_budget"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if len(appCfg.CSRFKey) < 32 {
		return fmt.Errorf("csrf_key must be at least 32 bytes")
	}

	if appCfg.AllocRetryBudget < 1 {
		return fmt.Errorf("alloc_retry_budget must be at least 1")
	}

	// A partially configured SMS gateway silently drops every delivery;
	// refuse to start rather than flag every registration for follow-up.
	smsSet := 0
	for _, v := range []string{appCfg.SMSAccountSID, appCfg.SMSAuthToken, appCfg.SMSFrom} {
		if v != "" {
			smsSet++
		}
	}
	if smsSet != 0 && smsSet != 3 {
		return fmt.Errorf("sms gateway needs sms_account_sid, sms_auth_token and sms_from together")
	}

	return nil
}
