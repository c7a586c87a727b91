// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Toucher is the part of the sessions store that records activity.
type Toucher interface {
	Touch(ctx context.Context, tokenHash string) (bool, error)
}

// Handler keeps stored sessions alive while their holder is active, so
// the cleanup worker only closes sessions that really went idle.
type Handler struct {
	Sessions   Toucher
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(sessStore Toucher, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions:   sessStore,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

type heartbeatResponse struct {
	Active bool `json:"active"`
}

// ServeHeartbeat handles POST /api/heartbeat from open back-office tabs.
// It always answers 200; Active is false once the session has been closed.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	active := h.touch(r)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(heartbeatResponse{Active: active})
}

// Track touches the session on every request that carries a token.
func (h *Handler) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.touch(r)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) touch(r *http.Request) bool {
	token := h.SessionMgr.Token(r)
	if token == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ok, err := h.Sessions.Touch(ctx, auth.HashToken(token))
	if err != nil {
		h.Log.Warn("failed to update session last_active_at", zap.Error(err))
		return false
	}
	return ok
}
