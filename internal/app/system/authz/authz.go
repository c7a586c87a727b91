// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Internal roles, re-exported for handlers.
const (
	RoleAdmin       = models.RoleAdmin
	RoleAccounting  = models.RoleAccounting
	RoleCourier     = models.RoleCourier
	RoleCoordinator = models.RoleCoordinator
)

// Roles lists every internal role in display order.
var Roles = models.Roles

// IsValidRole reports whether role is one of Roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserCtx returns the user's role, name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return user.Role, user.Name, userID, true
}

// UserID returns the signed-in user's ObjectID, or NilObjectID.
func UserID(r *http.Request) primitive.ObjectID {
	_, _, id, _ := UserCtx(r)
	return id
}
