// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/freightdesk/internal/app/features/errors"
	"github.com/dalemusser/freightdesk/internal/app/store/sessions"
	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/edgegate"
	"github.com/dalemusser/freightdesk/internal/app/system/inputval"
	"github.com/dalemusser/freightdesk/internal/app/system/metrics"
	"github.com/dalemusser/freightdesk/internal/app/system/normalize"
	"github.com/dalemusser/freightdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	Sessions   *sessions.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Policy     edgegate.Policy
	Metrics    *metrics.Metrics
	Audit      *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	sessStore *sessions.Store,
	sessionMgr *auth.SessionManager,
	limiter *ratelimit.LoginLimiter,
	policy edgegate.Policy,
	m *metrics.Metrics,
	auditLog *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		Sessions:   sessStore,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Policy:     policy,
		Metrics:    m,
		Audit:      auditLog,
		ErrLog:     errLog,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	LoginID string
}

type loginInput struct {
	LoginID  string `validate:"required,max=100" label:"Login ID"`
	Password string `validate:"required,max=200" label:"Password"`
}

// Destination is where a freshly signed-in user lands: the role's home
// area, or the public site for a role with no area.
func (h *Handler) Destination(role string) string {
	if home, ok := h.Policy.Home(role); ok {
		return home
	}
	return "/"
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/login                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		if home, known := h.Policy.Home(u.Role); known {
			http.Redirect(w, r, home, http.StatusSeeOther)
			return
		}
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM: viewdata.NewBaseVM(r, "Sign in", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/auth/login")
		return
	}

	in := loginInput{
		LoginID:  normalize.LoginID(r.PostFormValue("login_id")),
		Password: r.PostFormValue("password"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderFormWithError(w, r, http.StatusUnprocessableEntity, res.First(), in.LoginID)
		return
	}

	if ok, reason := h.Limiter.Check(r, in.LoginID); !ok {
		h.Metrics.RecordLogin(metrics.LoginThrottled)
		h.Log.Warn("login throttled",
			zap.String("login_id", in.LoginID),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.Audit.LoginFailedRateLimit(r.Context(), r, in.LoginID)
		h.renderFormWithError(w, r, http.StatusTooManyRequests, reason, in.LoginID)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	u, err := h.Users.Authenticate(ctx, in.LoginID, in.Password)
	switch {
	case errors.Is(err, userstore.ErrBadCredentials):
		h.Metrics.RecordLogin(metrics.LoginFailed)
		h.Log.Info("login failed", zap.String("login_id", in.LoginID))
		h.Audit.LoginFailed(ctx, r, in.LoginID)
		h.renderFormWithError(w, r, http.StatusUnauthorized, "Invalid login ID or password.", in.LoginID)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "database error during login", err, "Sign-in is unavailable right now.", "/auth/login")
		return
	}

	if u.IsDisabled() {
		h.Metrics.RecordLogin(metrics.LoginDisabled)
		h.Log.Info("login refused for disabled user", zap.String("user_id", u.ID.Hex()))
		h.Audit.LoginFailedUserDisabled(ctx, r, u.ID, u.LoginID)
		h.renderFormWithError(w, r, http.StatusForbidden, "This account has been disabled. Please contact an administrator.", in.LoginID)
		return
	}

	token, err := auth.NewToken()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "token generation failed", err, "Unable to sign in. Please try again.", "/auth/login")
		return
	}

	if _, err := h.Sessions.Create(ctx, auth.HashToken(token), u.ID, u.Role, ratelimit.ClientIP(r), r.UserAgent()); err != nil {
		h.ErrLog.LogServerError(w, r, "record session failed", err, "Unable to sign in. Please try again.", "/auth/login",
			zap.String("user_id", u.ID.Hex()))
		return
	}

	if err := h.SessionMgr.Issue(w, r, sessionUser(u), token); err != nil {
		h.ErrLog.LogServerError(w, r, "issue credential failed", err, "Unable to sign in. Please try again.", "/auth/login",
			zap.String("user_id", u.ID.Hex()))
		return
	}

	h.Limiter.ResetAccount(in.LoginID)
	h.Metrics.RecordLogin(metrics.LoginSuccess)
	h.Log.Info("login succeeded",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))
	h.Audit.LoginSuccess(ctx, r, u.ID, u.LoginID)

	http.Redirect(w, r, h.Destination(u.Role), http.StatusSeeOther)
}

func sessionUser(u *models.User) auth.SessionUser {
	return auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		LoginID: u.LoginID,
		Role:    u.Role,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, loginID string) {
	data := loginFormData{
		BaseVM:  viewdata.NewBaseVM(r, "Sign in", "/"),
		LoginID: loginID,
	}
	data.SetError(msg)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "login", data)
}
