// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, and request body size limits.
// AppConfig is where everything specific to HackMate lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: hackmate-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://hackmate.app")
	BaseURL string

	// Listing lifecycle configuration
	ProjectTTLDays      int // Days a listing stays visible to non-owners before it expires
	DescriptionMinChars int // Minimum description length for new and edited listings

	// Database operation timeouts, in seconds. Zero keeps the built-in
	// default for that tier.
	DBTimeoutPingSecs   int
	DBTimeoutShortSecs  int
	DBTimeoutMediumSecs int
	DBTimeoutLongSecs   int
}
