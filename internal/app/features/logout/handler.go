// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/store/sessions"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Sessions   *sessions.Store
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, sessStore *sessions.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Sessions:   sessStore,
		Audit:      auditLog,
	}
}

// ServeLogout handles GET and POST /auth/logout. The stored session is
// closed, every credential cookie is expired and the visitor lands on the
// public home page. Calling it without a credential is harmless.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, u.ID)
	}

	if token := h.SessionMgr.Token(r); token != "" && h.Sessions != nil {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "logout")
		closed, err := h.Sessions.CloseByToken(ctx, auth.HashToken(token), models.EndLogout)
		cancel()
		if err != nil {
			// Still clear the cookies; the cleanup worker closes it later.
			h.Log.Error("logout: close session", zap.Error(err))
		} else if !closed {
			h.Log.Debug("logout: no open session for token")
		}
	}

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("logout: clear cookies", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
