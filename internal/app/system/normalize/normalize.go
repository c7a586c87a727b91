// Package normalize trims and canonicalizes user-entered values before they
// are stored or compared.
package normalize

import (
	"strings"
)

// Name trims and collapses internal runs of whitespace. Case is kept.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// LoginID trims surrounding whitespace. Case-insensitive matching uses the
// folded copy stored next to it.
func LoginID(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role coming from a form or config.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a search or filter value. Case is kept.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Filter maps the "all" sentinel used by filter dropdowns to "".
func Filter(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
