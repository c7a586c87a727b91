// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	aboutfeature "github.com/dalemusser/freightdesk/internal/app/features/about"
	accountingfeature "github.com/dalemusser/freightdesk/internal/app/features/accounting"
	adminfeature "github.com/dalemusser/freightdesk/internal/app/features/admin"
	contactfeature "github.com/dalemusser/freightdesk/internal/app/features/contact"
	coordinatorfeature "github.com/dalemusser/freightdesk/internal/app/features/coordinator"
	courierfeature "github.com/dalemusser/freightdesk/internal/app/features/courier"
	errorsfeature "github.com/dalemusser/freightdesk/internal/app/features/errors"
	healthfeature "github.com/dalemusser/freightdesk/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/freightdesk/internal/app/features/heartbeat"
	homefeature "github.com/dalemusser/freightdesk/internal/app/features/home"
	loginfeature "github.com/dalemusser/freightdesk/internal/app/features/login"
	logoutfeature "github.com/dalemusser/freightdesk/internal/app/features/logout"
	"github.com/dalemusser/freightdesk/internal/app/store/audit"
	sessionstore "github.com/dalemusser/freightdesk/internal/app/store/sessions"
	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/edgegate"
	"github.com/dalemusser/freightdesk/internal/app/system/metrics"
	"github.com/dalemusser/freightdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/freightdesk/internal/app/system/rolesignal"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for FreightDesk.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// Request order matters here: the edge gate runs before anything reads the
// session, so an area page is never rendered for a request without a token
// cookie. Everything after the gate (session user, role signal, CSRF) is
// page-level and never redirects.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetCookieNames(appCfg.TokenCookie, appCfg.RoleCookie)

	// Reload the user and check the stored session on every request, so
	// disabling an account or closing a session takes effect immediately.
	db := deps.MongoDatabase
	sessStore := sessionstore.New(db)
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))
	sessionMgr.SetSessionChecker(sessStore)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	m := metrics.New(rolesignal.Roles...)
	policy := edgegate.NewPolicy(appCfg.LoginPath, edgegate.DefaultRules...)
	stack, err := middlewareStack(appCfg, secure, sessionMgr, policy, m, logger)
	if err != nil {
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Admin:      appCfg.AuditLogAdmin,
		Operations: appCfg.AuditLogOperations,
	})
	errorsHandler := errorsfeature.NewHandler()
	heartbeat := heartbeatfeature.NewHandler(sessStore, sessionMgr, logger)

	r := chi.NewRouter()
	r.Use(stack...)
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check and metrics for load balancers and scrapers
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))
	r.Handle("/metrics", m.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	r.Mount("/", homefeature.Routes(homefeature.NewHandler(logger)))
	r.Mount("/about", aboutfeature.Routes(aboutfeature.NewHandler(logger)))
	r.Mount("/contact", contactfeature.Routes(contactfeature.NewHandler(logger)))

	// Authentication
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute, appCfg.LoginBurst)
	loginHandler := loginfeature.NewHandler(userstore.New(db), sessStore, sessionMgr, limiter, policy, m, auditLog, errLog, logger)
	r.Mount(appCfg.LoginPath, loginfeature.Routes(loginHandler))
	r.Mount("/auth/logout", logoutfeature.Routes(logoutfeature.NewHandler(sessionMgr, sessStore, auditLog, logger)))
	r.Mount("/api/heartbeat", heartbeatfeature.Routes(heartbeat))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)

	// Back-office areas. The gate has already sent foreign roles home.
	// Stricter than the gate: a token whose role the gate does not know, or a
	// token with no open session behind it, never reaches area content here.
	forbidden := http.HandlerFunc(errorsHandler.Forbidden)
	area := func(role string) []func(http.Handler) http.Handler {
		return append(areaGuard(appCfg.LoginPath, forbidden, role), heartbeat.Track)
	}
	r.Mount("/admin", adminfeature.Routes(adminfeature.NewHandler(db, auditLog, errLog, logger), area(authz.RoleAdmin)...))
	r.Mount("/accounting", accountingfeature.Routes(accountingfeature.NewHandler(db, auditLog, errLog, logger), area(authz.RoleAccounting)...))
	r.Mount("/courier", courierfeature.Routes(courierfeature.NewHandler(db, errLog, logger), area(authz.RoleCourier)...))
	r.Mount("/coordinator", coordinatorfeature.Routes(coordinatorfeature.NewHandler(db, auditLog, errLog, logger), area(authz.RoleCoordinator)...))

	return r, nil
}

// areaGuard admits only signed-in users holding role. Requests with no
// loaded user go to the sign-in page; other roles get forbidden.
func areaGuard(loginPath string, forbidden http.Handler, role string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		auth.RequireSignedIn(loginPath),
		authz.RequireRole(forbidden, role),
	}
}

// middlewareStack returns the global middleware in the order requests pass
// through it.
func middlewareStack(appCfg AppConfig, secure bool, sm *auth.SessionManager, policy edgegate.Policy, m *metrics.Metrics, logger *zap.Logger) ([]func(http.Handler) http.Handler, error) {
	matcher, err := edgegate.NewMatcher(appCfg.ProtectedPrefixes...)
	if err != nil {
		return nil, err
	}
	gate := edgegate.New(matcher, policy,
		edgegate.WithCookieNames(edgegate.CookieNames{Token: appCfg.TokenCookie, Role: appCfg.RoleCookie}),
		edgegate.WithObserver(m.GateObserver()),
		edgegate.WithObserver(func(r *http.Request, d edgegate.Decision) {
			if d.Redirect() {
				logger.Debug("edge gate redirect",
					zap.String("path", d.Path),
					zap.String("outcome", d.Outcome.String()),
					zap.String("target", d.Target))
			}
		}),
	)

	// The CSRF key is derived so it never equals the session signing key.
	csrfKey := sha256.Sum256([]byte("freightdesk-csrf:" + appCfg.SessionKey))
	protect := csrf.Protect(csrfKey[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)

	stack := []func(http.Handler) http.Handler{middleware.RequestID}
	if appCfg.TrustProxyHeaders {
		stack = append(stack, middleware.RealIP)
	}
	return append(stack,
		middleware.Recoverer,
		gate.Middleware,
		sm.LoadSessionUser,
		rolesignal.NewProvider(sm, logger).Middleware,
		plaintextUnlessTLS(secure),
		protect,
	), nil
}

// plaintextUnlessTLS marks plain-HTTP requests for gorilla/csrf, which
// otherwise applies its HTTPS-only referer checks. Production keeps the
// strict checks.
func plaintextUnlessTLS(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
