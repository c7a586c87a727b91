// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Internal roles. Role strings are compared exactly.
const (
	RoleAdmin       = "admin"
	RoleAccounting  = "accounting"
	RoleCourier     = "courier"
	RoleCoordinator = "coordinator"
)

// Roles lists every internal role in display order. The edge gate's policy
// table, the role signal and the area guards all read from it.
var Roles = []string{RoleAdmin, RoleAccounting, RoleCourier, RoleCoordinator}

// User statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is a back-office account. Role decides which area the edge gate
// sends the user to: admin | accounting | courier | coordinator.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LoginID      string             `bson:"login_id" json:"login_id"`
	LoginIDCI    string             `bson:"login_id_ci" json:"login_id_ci"` // folded for case-insensitive lookup
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"full_name_ci"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsDisabled reports whether the account may not sign in.
func (u User) IsDisabled() bool {
	return u.Status == StatusDisabled
}
