// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig is
// everything specific to TripDesk.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL used to build OAuth callback URLs
	BaseURL string // e.g., "https://tripdesk.example.com"

	// OAuth provider credentials
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	// SuperAdmin bootstrap: emails on this list are provisioned as
	// SuperAdmin on their first sign-in.
	SuperAdminEmails []string

	// Admin user list page size
	UserListLimit int64

	// Audit logging settings ("all", "db", "log", "off")
	AuditLogAuth  string
	AuditLogAdmin string
}
