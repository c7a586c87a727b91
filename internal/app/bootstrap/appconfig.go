// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for FreightDesk.
//
// These values come from environment variables (FREIGHTDESK_*), config
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and the like; everything the portal itself
// needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session storage (the role echo read by the page chrome)
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for session storage (default: freightdesk-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Edge gate
	TokenCookie       string   // Name of the session token cookie
	RoleCookie        string   // Name of the role cookie
	LoginPath         string   // Where unauthenticated requests are sent
	ProtectedPrefixes []string // Area prefixes the gate guards

	// Session lifetime and sign-in throttling
	SessionIdleTimeout time.Duration // Sessions idle longer than this are closed by the cleanup worker
	SessionSweepEvery  time.Duration // How often the cleanup worker runs
	LoginRatePerMinute int
	LoginBurst         int

	// Take the client address from X-Forwarded-For / X-Real-IP. Only enable
	// behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	// Audit log destination per category: all, db, log or off
	AuditLogAuth       string
	AuditLogAdmin      string
	AuditLogOperations string

	// First admin account, created on startup when no user has that login id
	BootstrapAdminLogin    string
	BootstrapAdminPassword string
}
