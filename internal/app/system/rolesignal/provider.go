package rolesignal

import (
	"net/http"

	"go.uber.org/zap"
)

// Source reads the role kept in the browser session's storage.
type Source interface {
	StoredRole(r *http.Request) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(r *http.Request) (string, error)

// StoredRole calls f(r).
func (f SourceFunc) StoredRole(r *http.Request) (string, error) { return f(r) }

// Provider initializes the signal for each page load.
type Provider struct {
	src   Source
	known map[string]struct{}
	log   *zap.Logger
}

// NewProvider builds a Provider. With no roles given, Roles is used.
func NewProvider(src Source, logger *zap.Logger, roles ...string) *Provider {
	if len(roles) == 0 {
		roles = Roles
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	known := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		known[r] = struct{}{}
	}
	return &Provider{src: src, known: known, log: logger}
}

// Read derives the signal for r. A missing, unreadable or unrecognized
// stored value yields the anonymous signal; it never fails.
func (p *Provider) Read(r *http.Request) Signal {
	if p.src == nil {
		return Anonymous()
	}
	role, err := p.src.StoredRole(r)
	if err != nil {
		p.log.Debug("role storage unreadable; treating visitor as anonymous", zap.Error(err))
		return Anonymous()
	}
	if _, ok := p.known[role]; !ok {
		return Anonymous()
	}
	return Named(role)
}

// Middleware puts the signal in the request context. A signal already
// present is kept, so it is initialized once per page load.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		s := p.Read(r)
		next.ServeHTTP(w, r.WithContext(WithSignal(r.Context(), s)))
	})
}
