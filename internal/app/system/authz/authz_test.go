package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/freightdesk/internal/app/system/auth"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, name, id, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false when no user")
	}
	if role != "visitor" || name != "" || id != primitive.NilObjectID {
		t.Errorf("got role=%q name=%q id=%v", role, name, id)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-hex", Role: "admin"})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected ok=false for malformed user ID")
	}
}

func TestUserCtx_Valid(t *testing.T) {
	id := testUserID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: id, Name: "Rae", Role: "courier"})

	role, name, oid, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "courier" || name != "Rae" || oid.Hex() != id {
		t.Errorf("got role=%q name=%q id=%s", role, name, oid.Hex())
	}
	if authz.UserID(req).Hex() != id {
		t.Errorf("UserID = %s, want %s", authz.UserID(req).Hex(), id)
	}
}

func TestHasAnyRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: testUserID(), Role: "accounting"})

	if !authz.HasAnyRole(req, "admin", "accounting") {
		t.Error("expected accounting to match")
	}
	if authz.HasRole(req, "admin") {
		t.Error("accounting is not admin")
	}
	if authz.HasRole(req, "Accounting") {
		t.Error("role comparison must be exact")
	}
}

func TestHasAnyRole_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if authz.HasAnyRole(req, authz.Roles...) {
		t.Error("expected false when no user")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range authz.Roles {
		if !authz.IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false", r)
		}
	}
	for _, r := range []string{"", "superadmin", "ADMIN", "guest"} {
		if authz.IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = true", r)
		}
	}
}

func TestRequireRole(t *testing.T) {
	deny := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := authz.RequireRole(deny, authz.RoleAdmin)(ok)

	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"admin", &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "admin"}, http.StatusNoContent},
		{"courier", &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "courier"}, http.StatusForbidden},
		{"unknown role", &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "guest"}, http.StatusForbidden},
		{"no user", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/admin", nil)
		if tt.user != nil {
			r = auth.WithTestUser(r, tt.user)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}
