package rolesignal_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/freightdesk/internal/app/system/rolesignal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func staticSource(role string, err error) rolesignal.Source {
	return rolesignal.SourceFunc(func(*http.Request) (string, error) { return role, err })
}

func capture(t *testing.T, p *rolesignal.Provider, req *http.Request) rolesignal.Signal {
	t.Helper()
	var got rolesignal.Signal
	var found bool
	h := p.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = rolesignal.FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, found, "middleware should provide a signal")
	return got
}

func TestProvider_NamedRoles(t *testing.T) {
	for _, role := range rolesignal.Roles {
		p := rolesignal.NewProvider(staticSource(role, nil), zap.NewNop())
		s := capture(t, p, httptest.NewRequest("GET", "/", nil))
		assert.False(t, s.IsAnonymous())
		assert.Equal(t, role, s.Role())
	}
}

func TestProvider_DegradesToAnonymous(t *testing.T) {
	cases := map[string]rolesignal.Source{
		"nothing stored":   staticSource("", nil),
		"unreadable store": staticSource("admin", errors.New("securecookie: the value is not valid")),
		"unknown role":     staticSource("guest", nil),
		"no source":        nil,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			p := rolesignal.NewProvider(src, nil)
			s := capture(t, p, httptest.NewRequest("GET", "/", nil))
			assert.True(t, s.IsAnonymous())
			assert.Equal(t, "anonymous", s.String())
		})
	}
}

func TestProvider_ReadsStorageOncePerPageLoad(t *testing.T) {
	calls := 0
	src := rolesignal.SourceFunc(func(*http.Request) (string, error) {
		calls++
		return "courier", nil
	})
	p := rolesignal.NewProvider(src, zap.NewNop())

	// Nested providers (e.g. a sub-router mounting it again) must not re-read.
	h := p.Middleware(p.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "courier", rolesignal.FromRequest(r).Role())
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 1, calls)

	// A new page load derives the signal again.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 2, calls)
}

func TestFromContext_WithoutProvider(t *testing.T) {
	s, ok := rolesignal.FromContext(httptest.NewRequest("GET", "/", nil).Context())
	assert.False(t, ok)
	assert.True(t, s.IsAnonymous())
}

func TestProvider_CustomRoleSet(t *testing.T) {
	p := rolesignal.NewProvider(staticSource("dispatcher", nil), zap.NewNop(), "dispatcher")
	s := p.Read(httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "dispatcher", s.Role())
}
