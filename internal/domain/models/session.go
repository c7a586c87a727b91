// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session end reasons.
const (
	EndLogout   = "logout"
	EndInactive = "inactive"
)

// Session records one issued credential. The raw token never leaves the
// browser; only its SHA-256 hash is stored.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TokenHash string             `bson:"token_hash"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Role      string             `bson:"role"`

	LoginAt      time.Time  `bson:"login_at"`
	LastActiveAt time.Time  `bson:"last_active_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`
	EndReason    string     `bson:"end_reason,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// IsOpen reports whether the session has not been closed.
func (s Session) IsOpen() bool { return s.LogoutAt == nil }
