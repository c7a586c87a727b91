// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/edgegate"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for FreightDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: FREIGHTDESK_MONGO_URI, FREIGHTDESK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "freightdesk", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session storage cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Edge gate
	{Name: "token_cookie", Default: auth.DefaultTokenCookie, Desc: "Name of the session token cookie"},
	{Name: "role_cookie", Default: auth.DefaultRoleCookie, Desc: "Name of the role cookie"},
	{Name: "login_path", Default: edgegate.DefaultLoginPath, Desc: "Where unauthenticated requests are redirected"},
	{Name: "protected_prefixes", Default: strings.Join(edgegate.DefaultPatterns, ","), Desc: "Comma-separated path patterns guarded by the edge gate"},

	// Sessions and sign-in
	{Name: "session_idle_timeout", Default: "30m", Desc: "Close sessions idle longer than this (e.g., 30m, 2h)"},
	{Name: "session_sweep_interval", Default: "5m", Desc: "How often idle sessions are swept"},
	{Name: "login_rate_per_minute", Default: 10, Desc: "Sign-in attempts allowed per client IP per minute"},
	{Name: "login_burst", Default: 5, Desc: "Sign-in attempts allowed in a burst"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Read the client IP from X-Forwarded-For (only behind a trusted proxy)"},

	// Audit log: all, db, log or off per category
	{Name: "audit_log_auth", Default: auditlog.ToAll, Desc: "Where sign-in and sign-out events go (all, db, log, off)"},
	{Name: "audit_log_admin", Default: auditlog.ToAll, Desc: "Where user account changes go (all, db, log, off)"},
	{Name: "audit_log_operations", Default: auditlog.ToAll, Desc: "Where salary and incident events go (all, db, log, off)"},

	// Admin bootstrap
	{Name: "bootstrap_admin_login", Default: "", Desc: "Login id of an admin account created on startup if missing"},
	{Name: "bootstrap_admin_password", Default: "", Desc: "Initial password for the bootstrap admin"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence:
// flags > env > files > defaults. Query timeouts are read from
// FREIGHTDESK_TIMEOUT_* on top of that.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FREIGHTDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		// Edge gate
		TokenCookie:       appValues.String("token_cookie"),
		RoleCookie:        appValues.String("role_cookie"),
		LoginPath:         appValues.String("login_path"),
		ProtectedPrefixes: edgegate.ParsePatterns(appValues.String("protected_prefixes")),

		// Sessions and sign-in
		SessionIdleTimeout: appValues.Duration("session_idle_timeout", 30*time.Minute),
		SessionSweepEvery:  appValues.Duration("session_sweep_interval", 5*time.Minute),
		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),
		LoginBurst:         appValues.Int("login_burst"),
		TrustProxyHeaders:  appValues.Bool("trust_proxy_headers"),

		// Audit log
		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogAdmin:      appValues.String("audit_log_admin"),
		AuditLogOperations: appValues.String("audit_log_operations"),

		// Admin bootstrap
		BootstrapAdminLogin:    appValues.String("bootstrap_admin_login"),
		BootstrapAdminPassword: appValues.String("bootstrap_admin_password"),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("query timeouts overridden from environment", zap.Int("count", n))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// FreightDesk checks the MongoDB URI, the gate patterns and the login path
// before anything connects or listens.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if _, err := edgegate.NewMatcher(appCfg.ProtectedPrefixes...); err != nil {
		return fmt.Errorf("protected_prefixes: %w", err)
	}
	if !strings.HasPrefix(appCfg.LoginPath, "/") {
		return fmt.Errorf("login_path must be an absolute path, got %q", appCfg.LoginPath)
	}
	if appCfg.TokenCookie == "" || appCfg.RoleCookie == "" || appCfg.TokenCookie == appCfg.RoleCookie {
		return fmt.Errorf("token_cookie and role_cookie must be set and differ")
	}
	if appCfg.SessionIdleTimeout <= 0 || appCfg.SessionSweepEvery <= 0 {
		return fmt.Errorf("session_idle_timeout and session_sweep_interval must be positive")
	}
	if appCfg.LoginRatePerMinute <= 0 || appCfg.LoginBurst <= 0 {
		return fmt.Errorf("login_rate_per_minute and login_burst must be positive")
	}
	for name, v := range map[string]string{
		"audit_log_auth":       appCfg.AuditLogAuth,
		"audit_log_admin":      appCfg.AuditLogAdmin,
		"audit_log_operations": appCfg.AuditLogOperations,
	} {
		if v != "" && !slices.Contains(auditlog.Destinations, v) {
			return fmt.Errorf("%s must be one of %s, got %q", name, strings.Join(auditlog.Destinations, ", "), v)
		}
	}
	if (appCfg.BootstrapAdminLogin == "") != (appCfg.BootstrapAdminPassword == "") {
		return fmt.Errorf("bootstrap_admin_login and bootstrap_admin_password must be set together")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return fmt.Errorf("session_key must be changed in production")
	}
	return nil
}
