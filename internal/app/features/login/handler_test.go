package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/freightdesk/internal/app/features/errors"
	"github.com/dalemusser/freightdesk/internal/app/features/login"
	"github.com/dalemusser/freightdesk/internal/app/store/audit"
	"github.com/dalemusser/freightdesk/internal/app/store/sessions"
	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/edgegate"
	"github.com/dalemusser/freightdesk/internal/app/system/metrics"
	"github.com/dalemusser/freightdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/freightdesk/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h       *login.Handler
	db      *mongo.Database
	metrics *metrics.Metrics
	audit   *audit.Store
}

func newHandler(t *testing.T, db *mongo.Database, limiter *ratelimit.LoginLimiter) env {
	t.Helper()
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter(100, 100)
	}
	m := metrics.New(authz.Roles...)
	var users *userstore.Store
	var sess *sessions.Store
	var events *audit.Store
	var auditLog *auditlog.Logger
	logger := zap.NewNop()
	if db != nil {
		users = userstore.New(db)
		sess = sessions.New(db)
		events = audit.New(db)
		auditLog = auditlog.New(events, logger, auditlog.Config{})
	}
	h := login.NewHandler(
		users,
		sess,
		testutil.NewSessionManager(t),
		limiter,
		edgegate.NewPolicy(edgegate.DefaultLoginPath, edgegate.DefaultRules...),
		m,
		auditLog,
		uierrors.NewErrorLogger(logger),
		logger,
	)
	return env{h: h, db: db, metrics: m, audit: events}
}

func post(e env, loginID, password string) *httptest.ResponseRecorder {
	form := url.Values{"login_id": {loginID}, "password": {password}}
	req := testutil.NewFormRequest("POST", "/auth/login", form)
	req.RemoteAddr = "203.0.113.7:5000"
	rec := httptest.NewRecorder()
	testutil.ServeTolerant(e.h.HandleLoginPost, rec, req)
	return rec
}

func attempts(e env, result string) float64 {
	return promtestutil.ToFloat64(e.metrics.LoginAttempts.WithLabelValues(result))
}

func auditEvents(t *testing.T, e env, eventType string) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := e.audit.Count(ctx, audit.QueryFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("count audit events: %v", err)
	}
	return n
}

func TestHandleLoginPost_IssuesCredential(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateUser(ctx, "Ada Admin", "ada", "admin", "s3cret-pass")

	e := newHandler(t, db, nil)
	rec := post(e, "ada", "s3cret-pass")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Location = %q, want /admin", loc)
	}

	token := testutil.Cookie(rec, auth.DefaultTokenCookie)
	if token == nil || token.Value == "" {
		t.Fatal("expected token cookie")
	}
	if !token.HttpOnly {
		t.Error("token cookie should be HttpOnly")
	}
	role := testutil.Cookie(rec, auth.DefaultRoleCookie)
	if role == nil || role.Value != "admin" {
		t.Errorf("role cookie = %v, want admin", role)
	}
	if testutil.Cookie(rec, auth.DefaultSessionName) == nil {
		t.Error("expected session-scoped store cookie")
	}

	s, err := sessions.New(db).GetByToken(ctx, auth.HashToken(token.Value))
	if err != nil {
		t.Fatalf("session not recorded: %v", err)
	}
	if s.Role != "admin" || !s.IsOpen() || s.IP != "203.0.113.7" {
		t.Errorf("unexpected session: %+v", s)
	}
	if got := attempts(e, metrics.LoginSuccess); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if n := auditEvents(t, e, audit.EventLoginSuccess); n != 1 {
		t.Errorf("login_success audit events = %d, want 1", n)
	}
}

func TestHandleLoginPost_RedirectsToRoleHome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	tests := []struct {
		loginID string
		role    string
		want    string
	}{
		{"cora", "courier", "/courier/manage-order"},
		{"acc", "accounting", "/accounting"},
		{"coord", "coordinator", "/coordinator"},
		{"guest", "visitor", "/"},
	}
	for _, tt := range tests {
		fx.CreateUser(ctx, "User "+tt.loginID, tt.loginID, tt.role, "pw-123456")
		e := newHandler(t, db, nil)
		rec := post(e, tt.loginID, "pw-123456")
		if loc := rec.Header().Get("Location"); loc != tt.want {
			t.Errorf("%s: Location = %q, want %q", tt.role, loc, tt.want)
		}
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateUser(ctx, "Ada Admin", "ada", "admin", "right")

	e := newHandler(t, db, nil)
	rec := post(e, "ada", "wrong")

	if testutil.Cookie(rec, auth.DefaultTokenCookie) != nil {
		t.Error("no token should be issued")
	}
	if got := attempts(e, metrics.LoginFailed); got != 1 {
		t.Errorf("failed count = %v, want 1", got)
	}
	if n := auditEvents(t, e, audit.EventLoginFailedBadCredential); n != 1 {
		t.Errorf("bad credential audit events = %d, want 1", n)
	}
}

func TestHandleLoginPost_DisabledUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateDisabledUser(ctx, "Old Courier", "old", "courier", "pw")

	e := newHandler(t, db, nil)
	rec := post(e, "old", "pw")

	if testutil.Cookie(rec, auth.DefaultTokenCookie) != nil {
		t.Error("disabled user must not get a token")
	}
	if got := attempts(e, metrics.LoginDisabled); got != 1 {
		t.Errorf("disabled count = %v, want 1", got)
	}
	if n := auditEvents(t, e, audit.EventLoginFailedUserDisabled); n != 1 {
		t.Errorf("disabled audit events = %d, want 1", n)
	}
}

func TestHandleLoginPost_Throttled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateUser(ctx, "Ada Admin", "ada", "admin", "right")

	e := newHandler(t, db, ratelimit.NewLoginLimiter(1, 1))
	post(e, "ada", "wrong")
	rec := post(e, "ada", "right")

	if testutil.Cookie(rec, auth.DefaultTokenCookie) != nil {
		t.Error("throttled attempt must not sign in")
	}
	if got := attempts(e, metrics.LoginThrottled); got != 1 {
		t.Errorf("throttled count = %v, want 1", got)
	}
	if n := auditEvents(t, e, audit.EventLoginFailedRateLimit); n != 1 {
		t.Errorf("rate limit audit events = %d, want 1", n)
	}
}

func TestHandleLoginPost_MissingFields(t *testing.T) {
	e := newHandler(t, nil, nil)
	rec := post(e, "  ", "")

	if testutil.Cookie(rec, auth.DefaultTokenCookie) != nil {
		t.Error("no token should be issued")
	}
	for _, r := range []string{metrics.LoginSuccess, metrics.LoginFailed, metrics.LoginThrottled} {
		if got := attempts(e, r); got != 0 {
			t.Errorf("%s count = %v, want 0", r, got)
		}
	}
}

func TestServeLogin_SignedInUserGoesHome(t *testing.T) {
	e := newHandler(t, nil, nil)
	req := testutil.NewAuthenticatedRequest("GET", "/auth/login", testutil.CoordinatorUser())
	rec := testutil.NewRecorder()

	e.h.ServeLogin(rec, req)

	rec.AssertRedirect(t, "/coordinator")
}

func TestDestination(t *testing.T) {
	e := newHandler(t, nil, nil)
	if got := e.h.Destination("admin"); got != "/admin" {
		t.Errorf("admin -> %q", got)
	}
	if got := e.h.Destination("Admin"); got != "/" {
		t.Errorf("role match is exact; Admin -> %q", got)
	}
	if got := e.h.Destination(""); got != "/" {
		t.Errorf("empty -> %q", got)
	}
}
