package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sessionstore "github.com/dalemusser/freightdesk/internal/app/store/sessions"
	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/chrome"
	"github.com/dalemusser/freightdesk/internal/app/system/edgegate"
	"github.com/dalemusser/freightdesk/internal/app/system/metrics"
	"github.com/dalemusser/freightdesk/internal/app/system/rolesignal"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/freightdesk/internal/testutil"
	"github.com/go-chi/chi/v5"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type endpoint struct {
	hits   int
	chrome bool
	signal rolesignal.Signal
	remote string
}

func (p *endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.hits++
	p.chrome = chrome.ForRequest(r)
	p.signal = rolesignal.FromRequest(r)
	p.remote = r.RemoteAddr
	w.WriteHeader(http.StatusOK)
}

// newStack wires the global middleware in front of a stub page handler.
func newStack(t *testing.T) (http.Handler, *endpoint, *auth.SessionManager, *metrics.Metrics) {
	t.Helper()
	return newStackWith(t, validConfig())
}

func newStackWith(t *testing.T, cfg AppConfig) (http.Handler, *endpoint, *auth.SessionManager, *metrics.Metrics) {
	t.Helper()
	sm := testutil.NewSessionManager(t)
	m := metrics.New(rolesignal.Roles...)

	stack, err := middlewareStack(cfg, false, sm, edgegate.NewPolicy(cfg.LoginPath, edgegate.DefaultRules...), m, testLogger())
	require.NoError(t, err)

	p := &endpoint{}
	r := chi.NewRouter()
	r.Use(stack...)
	r.Handle("/*", p)
	return r, p, sm, m
}

// storedRoleCookie returns only the session storage cookie for role, as a
// browser would keep it after the token cookie is gone.
func storedRoleCookie(t *testing.T, sm *auth.SessionManager, role string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	u := testutil.UserWithRole(role)
	require.NoError(t, sm.Issue(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		auth.SessionUser{ID: u.ID, Name: u.Name, LoginID: u.LoginID, Role: role}, "tok"))
	c := testutil.Cookie(rec, auth.DefaultSessionName)
	require.NotNil(t, c)
	return c
}

func TestStack_GateRunsBeforeSessionStorage(t *testing.T) {
	h, p, sm, m := newStack(t)

	// Session storage says admin, but there is no token cookie.
	r := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	r.AddCookie(storedRoleCookie(t, sm, "admin"))
	r.AddCookie(&http.Cookie{Name: "role", Value: "admin"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://example.com/auth/login", rec.Header().Get("Location"))
	assert.Zero(t, p.hits, "area handler must not run")
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.GateDecisions.WithLabelValues("redirect_login", "admin")))
}

func TestStack_StoredRoleHidesChromeOnPublicPage(t *testing.T) {
	h, p, sm, _ := newStack(t)

	// The same visitor on the home page: no redirect, chrome hidden.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(storedRoleCookie(t, sm, "admin"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, p.hits)
	assert.False(t, p.chrome)
	assert.Equal(t, "admin", p.signal.Role())
}

func TestStack_AnonymousGetsChrome(t *testing.T) {
	h, p, _, _ := newStack(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, p.chrome)
	assert.True(t, p.signal.IsAnonymous())
}

func TestStack_ForeignAreaRedirectsHome(t *testing.T) {
	h, p, _, _ := newStack(t)

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
	r.AddCookie(&http.Cookie{Name: "role", Value: "courier"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://example.com/courier/manage-order", rec.Header().Get("Location"))
	assert.Zero(t, p.hits)
}

func TestStack_OwnAreaPasses(t *testing.T) {
	h, p, _, _ := newStack(t)

	r := httptest.NewRequest(http.MethodGet, "/accounting/salaries", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
	r.AddCookie(&http.Cookie{Name: "role", Value: "accounting"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, p.hits)
}

func TestStack_PostWithoutCSRFTokenRejected(t *testing.T) {
	h, p, _, _ := newStack(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, p.hits)
}

func TestStack_ForwardedForOnlyTrustedWhenConfigured(t *testing.T) {
	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/about", nil)
		r.RemoteAddr = "198.51.100.7:4000"
		r.Header.Set("X-Forwarded-For", "203.0.113.9")
		return r
	}

	h, p, _, _ := newStack(t)
	h.ServeHTTP(httptest.NewRecorder(), req())
	assert.Equal(t, "198.51.100.7:4000", p.remote)

	cfg := validConfig()
	cfg.TrustProxyHeaders = true
	h, p, _, _ = newStackWith(t, cfg)
	h.ServeHTTP(httptest.NewRecorder(), req())
	assert.Equal(t, "203.0.113.9", p.remote)
}

// newAreaStack mounts /admin behind the global middleware and the area guard,
// with the session manager reading users and sessions from db.
func newAreaStack(t *testing.T, db *mongo.Database) (http.Handler, *endpoint, *auth.SessionManager) {
	t.Helper()
	cfg := validConfig()
	sm := testutil.NewSessionManager(t)
	sm.SetUserFetcher(userstore.NewFetcher(db))
	sm.SetSessionChecker(sessionstore.New(db))

	stack, err := middlewareStack(cfg, false, sm, edgegate.NewPolicy(cfg.LoginPath, edgegate.DefaultRules...), metrics.New(rolesignal.Roles...), testLogger())
	require.NoError(t, err)

	forbidden := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	p := &endpoint{}
	r := chi.NewRouter()
	r.Use(stack...)
	r.With(areaGuard(cfg.LoginPath, forbidden, authz.RoleAdmin)...).Handle("/admin/*", p)
	return r, p, sm
}

// signIn records a session for u and returns the cookies a browser would
// carry afterwards.
func signIn(t *testing.T, db *mongo.Database, sm *auth.SessionManager, u models.User, token string) []*http.Cookie {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := sessionstore.New(db).Create(ctx, auth.HashToken(token), u.ID, u.Role, "", "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Issue(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil),
		auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, LoginID: u.LoginID, Role: u.Role}, token))
	return rec.Result().Cookies()
}

func getWith(h http.Handler, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestArea_DisabledUserLosesAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h, p, sm := newAreaStack(t, db)
	admin := fixtures.CreateUser(ctx, "Ada Admin", "ada", "admin", "pw")
	cookies := signIn(t, db, sm, admin, "tok-disabled")

	rec := getWith(h, "/admin/users", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, p.hits)

	require.NoError(t, userstore.New(db).SetStatus(ctx, admin.ID, models.StatusDisabled))

	rec = getWith(h, "/admin/users", cookies)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, p.hits, "area handler must not run for a disabled user")
}

func TestArea_ClosedSessionLosesAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	h, p, sm := newAreaStack(t, db)
	admin := fixtures.CreateUser(ctx, "Ada Admin", "ada", "admin", "pw")
	cookies := signIn(t, db, sm, admin, "tok-idle")

	require.Equal(t, http.StatusOK, getWith(h, "/admin/bookings", cookies).Code)

	// The idle sweep closes every session older than the threshold.
	n, err := sessionstore.New(db).CloseInactive(ctx, -time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	rec := getWith(h, "/admin/bookings", cookies)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, p.hits, "area handler must not run after the session closed")
}
