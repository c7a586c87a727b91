// Package edgegate is the request-time access gate for the back-office areas.
//
// It runs before any page handler, reads the session credential from the
// request cookies and either lets the request through or redirects it:
//
//   - no token cookie                      → the login page
//   - token, role foreign to the area      → that role's home area
//   - token, own area or unrecognized role → pass-through
//
// Everything except Gate.Middleware is a pure function of the cookie header
// and the URL path, so the decision logic is testable without a server.
// This package is the only place access to the areas is enforced; the chrome
// visibility logic used by templates is cosmetic and lives elsewhere.
package edgegate

import (
	"net/http"
	"strings"
)

// CookieNames names the two cookies carrying the session credential.
type CookieNames struct {
	Token string
	Role  string
}

// DefaultCookieNames are the names issued by the login flow.
var DefaultCookieNames = CookieNames{Token: "token", Role: "role"}

// Credential is what a single request claims about its session.
// It is re-read on every request and never cached.
type Credential struct {
	Token string // opaque; presence means "authenticated"
	Role  string // admin | accounting | courier | coordinator | anything else
}

// Authenticated reports whether a token value is present.
// An empty token value counts as absent.
func (c Credential) Authenticated() bool {
	return c.Token != ""
}

// ParseCredential extracts the credential from a raw Cookie header using
// DefaultCookieNames.
func ParseCredential(header string) Credential {
	return DefaultCookieNames.Parse(header)
}

// Parse extracts the credential from a raw Cookie header. Malformed pairs are
// skipped; a missing cookie yields an empty field.
func (n CookieNames) Parse(header string) Credential {
	var c Credential
	header = strings.TrimSpace(header)
	if header == "" {
		return c
	}

	req := http.Request{Header: http.Header{"Cookie": []string{header}}}
	if ck, err := req.Cookie(n.Token); err == nil {
		c.Token = ck.Value
	}
	if ck, err := req.Cookie(n.Role); err == nil {
		c.Role = ck.Value
	}
	return c
}

// cookieHeader joins every Cookie header line on the request.
func cookieHeader(r *http.Request) string {
	return strings.Join(r.Header.Values("Cookie"), "; ")
}
