package edgegate

import (
	"net/http"
	"net/url"
	"strings"
)

// Observer is told about every decision on a protected path. Observers must
// not write to the response.
type Observer func(r *http.Request, d Decision)

// Gate applies a Policy to the paths selected by a Matcher.
type Gate struct {
	matcher   Matcher
	policy    Policy
	cookies   CookieNames
	observers []Observer
}

// Option configures a Gate.
type Option func(*Gate)

// WithCookieNames overrides the credential cookie names.
func WithCookieNames(n CookieNames) Option {
	return func(g *Gate) {
		if n.Token != "" {
			g.cookies.Token = n.Token
		}
		if n.Role != "" {
			g.cookies.Role = n.Role
		}
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(g *Gate) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// New constructs a Gate.
func New(m Matcher, p Policy, opts ...Option) *Gate {
	g := &Gate{matcher: m, policy: p, cookies: DefaultCookieNames}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate returns the decision for r and whether r is on a protected path.
// Unprotected paths always pass.
func (g *Gate) Evaluate(r *http.Request) (Decision, bool) {
	path := r.URL.Path
	if !g.matcher.Match(path) {
		return Decision{Outcome: Pass, Path: path}, false
	}
	cred := g.cookies.Parse(cookieHeader(r))
	return g.policy.Decide(cred, path), true
}

// Middleware redirects (302) or hands the request on unchanged.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, protected := g.Evaluate(r)
		if protected {
			for _, o := range g.observers {
				o(r, d)
			}
		}
		if !d.Redirect() {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, absoluteURL(r, d.Target), http.StatusFound)
	})
}

// absoluteURL resolves target against the scheme and host the client used.
func absoluteURL(r *http.Request, target string) string {
	if r.Host == "" {
		return target
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	// Only the two web schemes are taken from the proxy header; anything
	// else would let the client write the Location header.
	if fp := r.Header.Get("X-Forwarded-Proto"); fp != "" {
		switch p := strings.ToLower(strings.TrimSpace(strings.Split(fp, ",")[0])); p {
		case "http", "https":
			scheme = p
		}
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: target}
	return u.String()
}
