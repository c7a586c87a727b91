// Package chrome decides whether the public site chrome (navigation bar,
// footer, floating contact and app-download buttons) wraps a page.
//
// The decision is presentational. Hiding chrome does not protect anything:
// requests for the back-office areas are filtered by the edge gate before
// any template runs.
package chrome

import (
	"net/http"
	"strings"

	"github.com/dalemusser/freightdesk/internal/app/system/rolesignal"
)

// RestrictedPrefixes are paths that never show public chrome.
var RestrictedPrefixes = []string{"/auth", "/admin", "/courier", "/coordinator", "/accounting"}

// IsRestricted reports whether path starts with a restricted prefix.
func IsRestricted(path string) bool {
	for _, p := range RestrictedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Visible reports whether chrome renders: only for anonymous visitors on
// unrestricted paths.
func Visible(s rolesignal.Signal, path string) bool {
	return s.IsAnonymous() && !IsRestricted(path)
}

// ForRequest applies Visible to the request's signal and path.
func ForRequest(r *http.Request) bool {
	return Visible(rolesignal.FromRequest(r), r.URL.Path)
}
