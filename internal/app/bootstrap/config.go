// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for HackMate.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: HACKMATE_MONGO_URI, HACKMATE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "hackmate", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "hackmate-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Base URL for OAuth callbacks
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks"},

	// Listing lifecycle
	{Name: "project_ttl_days", Default: 90, Desc: "Days a listing stays visible before it expires"},
	{Name: "description_min_chars", Default: 100, Desc: "Minimum description length for listings"},

	// Database operation timeouts (seconds; 0 keeps the built-in default)
	{Name: "db_timeout_ping_secs", Default: 0, Desc: "Timeout for health-check pings"},
	{Name: "db_timeout_short_secs", Default: 0, Desc: "Timeout for single-document operations"},
	{Name: "db_timeout_medium_secs", Default: 0, Desc: "Timeout for list queries and writes"},
	{Name: "db_timeout_long_secs", Default: 0, Desc: "Timeout for one background job tick"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, HACKMATE_* for app), and
// command-line flags, merged with precedence: flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HACKMATE", appConfigKeys)
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

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL: appValues.String("base_url"),

		ProjectTTLDays:      appValues.Int("project_ttl_days"),
		DescriptionMinChars: appValues.Int("description_min_chars"),

		DBTimeoutPingSecs:   appValues.Int("db_timeout_ping_secs"),
		DBTimeoutShortSecs:  appValues.Int("db_timeout_short_secs"),
		DBTimeoutMediumSecs: appValues.Int("db_timeout_medium_secs"),
		DBTimeoutLongSecs:   appValues.Int("db_timeout_long_secs"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// HackMate validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and sanity-checks the
// listing lifecycle values.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.ProjectTTLDays <= 0 {
		return fmt.Errorf("project_ttl_days must be positive, got %d", appCfg.ProjectTTLDays)
	}
	if appCfg.DescriptionMinChars < 0 {
		return fmt.Errorf("description_min_chars must not be negative, got %d", appCfg.DescriptionMinChars)
	}

	return nil
}
