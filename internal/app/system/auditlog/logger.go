// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/store/audit"
	"github.com/dalemusser/freightdesk/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for one category of events.
const (
	ToAll = "all" // MongoDB + zap
	ToDB  = "db"
	ToLog = "log"
	Off   = "off"
)

// Destinations lists the accepted Config values.
var Destinations = []string{ToAll, ToDB, ToLog, Off}

// Config picks a destination per event category. Empty means ToAll.
type Config struct {
	Auth       string // sign-in and sign-out
	Admin      string // user account changes
	Operations string // salary payments, incident resolution
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) destination(category string) string {
	var setting string
	switch category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryOperations:
		setting = l.config.Operations
	}
	if setting == "" {
		return ToAll
	}
	return setting
}

// Log records an audit event according to the category's destination.
// A nil Logger is a no-op, so handlers built in tests may leave it unset.
// Store failures are logged and never reach the caller.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	dest := l.destination(event.Category)
	if dest == Off {
		return
	}
	if dest == ToAll || dest == ToLog {
		l.logToZap(event)
	}
	if (dest == ToAll || dest == ToDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func base(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, e)
}

// LoginFailed logs a sign-in with an unknown login id or a wrong password.
// The two are not told apart, as on the sign-in form.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedLoginID string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedBadCredential, false)
	e.FailureReason = "bad credentials"
	e.Details = map[string]string{"attempted_login_id": attemptedLoginID}
	l.Log(ctx, e)
}

// LoginFailedUserDisabled logs a refused sign-in for a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedUserDisabled, false)
	e.UserID = &userID
	e.FailureReason = "user disabled"
	e.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a throttled sign-in attempt.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, attemptedLoginID string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_login_id": attemptedLoginID}
	l.Log(ctx, e)
}

// Logout logs a sign-out. userIDStr may be empty when the visitor was not
// signed in.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	e := base(r, audit.CategoryAuth, audit.EventLogout, true)
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

// --- Admin Events ---

// UserCreated logs when an admin creates an account.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, role string) {
	e := base(r, audit.CategoryAdmin, audit.EventUserCreated, true)
	e.UserID = &targetUserID
	e.ActorID = &actorID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// UserDisabled logs when an admin disables an account.
func (l *Logger) UserDisabled(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID) {
	e := base(r, audit.CategoryAdmin, audit.EventUserDisabled, true)
	e.UserID = &targetUserID
	e.ActorID = &actorID
	l.Log(ctx, e)
}

// UserEnabled logs when an admin re-enables an account.
func (l *Logger) UserEnabled(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID) {
	e := base(r, audit.CategoryAdmin, audit.EventUserEnabled, true)
	e.UserID = &targetUserID
	e.ActorID = &actorID
	l.Log(ctx, e)
}

// --- Operations Events ---

// SalaryPaid logs when accounting marks a salary paid.
func (l *Logger) SalaryPaid(ctx context.Context, r *http.Request, actorID, salaryID primitive.ObjectID) {
	e := base(r, audit.CategoryOperations, audit.EventSalaryPaid, true)
	e.ActorID = &actorID
	e.Subject = salaryID.Hex()
	l.Log(ctx, e)
}

// IncidentResolved logs when a coordinator resolves an incident.
func (l *Logger) IncidentResolved(ctx context.Context, r *http.Request, actorID, incidentID primitive.ObjectID) {
	e := base(r, audit.CategoryOperations, audit.EventIncidentResolved, true)
	e.ActorID = &actorID
	e.Subject = incidentID.Hex()
	l.Log(ctx, e)
}
