// Package rolesignal carries a page load's role to the render tree.
//
// The signal is read once per request from session-scoped storage (written
// by the login flow) and is immutable afterwards. It drives cosmetic
// decisions only; access control belongs to the edge gate.
package rolesignal

import (
	"context"
	"net/http"

	"github.com/dalemusser/freightdesk/internal/domain/models"
)

// Roles are the named internal roles a signal can hold.
var Roles = models.Roles

// Signal is either one of the named roles or the anonymous state.
// The zero value is anonymous.
type Signal struct {
	role string
}

// Anonymous returns the anonymous signal.
func Anonymous() Signal { return Signal{} }

// Named returns a signal for role. Callers are expected to have checked the
// role against the known set; Provider does.
func Named(role string) Signal { return Signal{role: role} }

// Role returns the role, or "" when anonymous.
func (s Signal) Role() string { return s.role }

// IsAnonymous reports whether no internal role is present.
func (s Signal) IsAnonymous() bool { return s.role == "" }

func (s Signal) String() string {
	if s.IsAnonymous() {
		return "anonymous"
	}
	return s.role
}

type ctxKey struct{}

// WithSignal returns a copy of ctx carrying s.
func WithSignal(ctx context.Context, s Signal) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the signal in ctx and whether one was provided.
// Without one the anonymous signal is returned.
func FromContext(ctx context.Context) (Signal, bool) {
	s, ok := ctx.Value(ctxKey{}).(Signal)
	return s, ok
}

// FromRequest is FromContext for a request, dropping the found flag.
func FromRequest(r *http.Request) Signal {
	s, _ := FromContext(r.Context())
	return s
}
