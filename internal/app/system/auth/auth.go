// Package auth issues and clears the session credential and exposes the
// signed-in user's display details to handlers.
//
// Three cookies make up a signed-in browser:
//   - token: opaque random credential, checked for presence by the edge gate
//   - role:  the user's role, used by the edge gate's policy table
//   - the session-scoped store (gorilla/sessions) holding the role echo read
//     by the role signal provider, plus the user's display name
//
// Nothing in this package grants access to an area; that is the edge gate's job.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "freightdesk-session"
	DefaultTokenCookie = "token"
	DefaultRoleCookie  = "role"

	roleKey    = "role"
	userIDKey  = "user_id"
	userName   = "user_name"
	loginIDKey = "login_id"
)

// ErrNoStoredRole is returned by StoredRole when the session holds no role.
var ErrNoStoredRole = errors.New("auth: no role in session storage")

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we keep in session storage & inject into r.Context().
type SessionUser struct {
	ID      string
	Name    string
	LoginID string
	Role    string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context. Tests use it to skip the
// cookie round trip.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie names and the session-scoped store.
type SessionManager struct {
	store       *sessions.CookieStore
	name        string
	tokenCookie string
	roleCookie  string
	secure      bool
	domain      string
	log         *zap.Logger

	fetcher UserFetcher
	checker SessionChecker
}

// UserFetcher loads the current state of a user on each request. It returns
// nil when the user is missing or disabled, or the lookup fails.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionChecker reports whether the stored session for a token hash is
// still open.
type SessionChecker interface {
	SessionOpen(ctx context.Context, tokenHash string) bool
}

// NewSessionManager creates the session-scoped cookie store. The store's
// cookie carries no Max-Age, so browsers drop it when the session ends.
//
// In production (secure=true) cookies are Secure + SameSite=Lax; locally over
// http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   0,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:       store,
		name:        name,
		tokenCookie: DefaultTokenCookie,
		roleCookie:  DefaultRoleCookie,
		secure:      secure,
		domain:      domain,
		log:         logger,
	}, nil
}

// SetCookieNames overrides the credential cookie names. Empty names keep
// the current value.
func (sm *SessionManager) SetCookieNames(token, role string) {
	if token != "" {
		sm.tokenCookie = token
	}
	if role != "" {
		sm.roleCookie = role
	}
}

// SetUserFetcher makes LoadSessionUser reload the user from f instead of
// trusting the display details in session storage.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetSessionChecker makes LoadSessionUser drop requests whose session has
// been closed by logout or the idle sweep.
func (sm *SessionManager) SetSessionChecker(c SessionChecker) { sm.checker = c }

// CookieNames returns the token and role cookie names.
func (sm *SessionManager) CookieNames() (token, role string) {
	return sm.tokenCookie, sm.roleCookie
}

// Store exposes the underlying cookie store.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// GetSession returns the session-scoped store for r. On a decode error a
// fresh session is returned alongside the error, as gorilla does.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// StoredRole reads the role echo from session storage. It satisfies
// rolesignal.Source.
func (sm *SessionManager) StoredRole(r *http.Request) (string, error) {
	sess, err := sm.GetSession(r)
	if err != nil {
		return "", err
	}
	raw, ok := sess.Values[roleKey]
	if !ok {
		return "", nil
	}
	role, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("auth: stored role has type %T", raw)
	}
	return role, nil
}

// Token returns the raw token cookie value, or "".
func (sm *SessionManager) Token(r *http.Request) string {
	c, err := r.Cookie(sm.tokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// Issue sets the token and role cookies and writes the role echo and
// display details into session storage.
func (sm *SessionManager) Issue(w http.ResponseWriter, r *http.Request, u SessionUser, token string) error {
	http.SetCookie(w, sm.cookie(sm.tokenCookie, token, 0))
	http.SetCookie(w, sm.cookie(sm.roleCookie, u.Role, 0))

	sess, err := sm.GetSession(r)
	if err != nil {
		// Stale or foreign cookie; overwrite it.
		sm.log.Debug("replacing undecodable session", zap.Error(err))
	}
	sess.Values[roleKey] = u.Role
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[loginIDKey] = u.LoginID
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear expires all three cookies.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, sm.cookie(sm.tokenCookie, "", -1))
	http.SetCookie(w, sm.cookie(sm.roleCookie, "", -1))

	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during clear", zap.Error(err))
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}

// LoadSessionUser injects the user into context when a token cookie is
// present, its session is still open and the user is still active. It never
// redirects.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := sm.resolve(r); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn sends requests with no loaded user to loginPath. Area
// routers use it so a closed session or a disabled account lands on the
// sign-in page rather than a 403.
func RequireSignedIn(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CurrentUser(r); !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (sm *SessionManager) resolve(r *http.Request) *SessionUser {
	token := sm.Token(r)
	if token == "" {
		return nil
	}
	sess, err := sm.GetSession(r)
	if err != nil {
		return nil
	}
	id := getString(sess, userIDKey)
	if id == "" {
		return nil
	}
	if sm.checker != nil && !sm.checker.SessionOpen(r.Context(), HashToken(token)) {
		sm.log.Debug("session closed; not loading user", zap.String("user_id", id))
		return nil
	}
	if sm.fetcher != nil {
		u := sm.fetcher.FetchUser(r.Context(), id)
		if u == nil {
			sm.log.Debug("user missing or disabled; not loading", zap.String("user_id", id))
		}
		return u
	}
	return &SessionUser{
		ID:      id,
		Name:    getString(sess, userName),
		LoginID: getString(sess, loginIDKey),
		Role:    getString(sess, roleKey),
	}
}

func (sm *SessionManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Tokens                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// NewToken returns 32 random bytes, hex encoded.
func NewToken() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("auth: random source unavailable")
	}
	return hex.EncodeToString(b), nil
}

// HashToken is the form a token is stored in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
