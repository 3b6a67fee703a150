// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, CORS, and request body limits.
// AppConfig is everything specific to the membership registry.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: partyreg-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Idle lifetime of a session cookie

	// CSRF protection
	CSRFKey string // 32-byte key for CSRF token signing

	// Site identity shown in page chrome and credential messages
	SiteName string
	BaseURL  string // e.g., "https://abalat.example.et" or "http://localhost:3000"

	// Email/SMTP configuration for credential delivery
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// SMS gateway configuration for credential delivery
	SMSAccountSID string
	SMSAuthToken  string
	SMSFrom       string // E.164 sending number

	// Membership ID allocation
	AllocRetryBudget int // attempts before registration gives up on a unique ID
}
