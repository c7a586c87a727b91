package edgegate

import (
	"fmt"
	"strings"
)

// DefaultPatterns are the protected areas.
var DefaultPatterns = []string{"/admin/*", "/courier/*", "/accounting/*", "/coordinator/*"}

// Matcher decides which paths the gate applies to. A pattern "/admin/*"
// (or "/admin/:path*") matches "/admin" itself and anything below it, but
// not "/administrator".
type Matcher struct {
	prefixes []string
}

// NewMatcher compiles path patterns. Each pattern must start with "/".
func NewMatcher(patterns ...string) (Matcher, error) {
	m := Matcher{prefixes: make([]string, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			return Matcher{}, fmt.Errorf("edgegate: pattern %q must start with /", p)
		}
		p = strings.TrimSuffix(p, "/:path*")
		p = strings.TrimSuffix(p, "/*")
		p = strings.TrimRight(p, "/")
		if p == "" {
			return Matcher{}, fmt.Errorf("edgegate: pattern %q would protect the whole site", "/")
		}
		m.prefixes = append(m.prefixes, p)
	}
	return m, nil
}

// MustMatcher is NewMatcher for static pattern lists.
func MustMatcher(patterns ...string) Matcher {
	m, err := NewMatcher(patterns...)
	if err != nil {
		panic(err)
	}
	return m
}

// ParsePatterns splits a comma separated pattern list, as used in config.
func ParsePatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether path falls under a protected prefix.
func (m Matcher) Match(path string) bool {
	for _, p := range m.prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Prefixes returns the compiled prefixes.
func (m Matcher) Prefixes() []string {
	out := make([]string, len(m.prefixes))
	copy(out, m.prefixes)
	return out
}
