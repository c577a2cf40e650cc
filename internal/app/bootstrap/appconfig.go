// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, log level); AppConfig is everything
// specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Bearer token configuration for API clients
	JWTSecret string
	JWTTTL    time.Duration

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string
	OAuthStateKey      string // signs the OAuth state cookie

	// Email/SMTP configuration
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string
	MailEnabled  bool

	// BaseURL is used to build links in notification emails and the OAuth
	// callback URL (e.g. "https://colabhub.cl" or "http://localhost:3000").
	BaseURL string

	// SiteName appears in email subjects and bodies.
	SiteName string

	// UploadDir is where project images land; served under /uploads.
	UploadDir string

	// Login throttling
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit logging: "all" (db+log), "db", "log", or "off" per category.
	AuditLogAuth  string
	AuditLogAdmin string

	// AdminEmail names the account promoted to administrator on startup.
	AdminEmail string
}
