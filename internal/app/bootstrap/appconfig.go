// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where you put everything specific to Meroket: the Mongo
// connection, session cookies, file storage for portfolio images, audit
// logging sinks, and the background session sweeper.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: meroket-session)
	SessionDomain string // Cookie domain (blank means current host)

	// File storage configuration for uploaded portfolio images
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/portfolios")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/portfolios")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region string // AWS region
	StorageS3Bucket string // S3 bucket name
	StorageS3Prefix string // Key prefix (e.g., "portfolios/")
	StorageCFURL    string // CloudFront distribution URL

	// Audit logging sinks: "all" (db+log), "db", "log", or "off"
	AuditLogAuth        string
	AuditLogAdmin       string
	AuditLogEntitlement string

	// Activity-session sweeper
	SessionCleanupInterval   time.Duration // How often to close stale activity sessions
	SessionInactiveThreshold time.Duration // Inactivity window before a session is closed

	// Base URL for absolute links (published site addresses)
	BaseURL string

	// Admin bootstrap: promote this account to admin on startup if set
	AdminEmail string
}
