package edgegate

import (
	"strings"

	"github.com/dalemusser/freightdesk/internal/domain/models"
)

// DefaultLoginPath is where unauthenticated requests are sent.
const DefaultLoginPath = "/auth/login"

// Rule is one row of the role policy: a request by Role whose path starts
// with any of Foreign is sent to Home.
type Rule struct {
	Role    string
	Foreign []string
	Home    string
}

// DefaultRules is the portal's role table, one row per entry in
// models.Roles. Adding a role is adding a row here and a name there.
var DefaultRules = []Rule{
	{Role: models.RoleAdmin, Foreign: []string{"/courier", "/accounting", "/coordinator"}, Home: "/admin"},
	{Role: models.RoleCourier, Foreign: []string{"/admin", "/accounting", "/coordinator"}, Home: "/courier/manage-order"},
	{Role: models.RoleAccounting, Foreign: []string{"/admin", "/courier", "/coordinator"}, Home: "/accounting"},
	{Role: models.RoleCoordinator, Foreign: []string{"/admin", "/courier", "/accounting"}, Home: "/coordinator"},
}

// Outcome is what the gate does with a request.
type Outcome int

const (
	Pass Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "pass"
	}
}

// Decision is the result of evaluating one request.
type Decision struct {
	Outcome Outcome
	Target  string // path to redirect to; empty on Pass
	Role    string
	Path    string
}

// Redirect reports whether the request must be redirected.
func (d Decision) Redirect() bool {
	return d.Outcome != Pass
}

// Policy maps roles to their rule and knows the login path.
type Policy struct {
	loginPath string
	rules     map[string]Rule
}

// NewPolicy builds a policy. With no rules, DefaultRules are used; an empty
// loginPath falls back to DefaultLoginPath.
func NewPolicy(loginPath string, rules ...Rule) Policy {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if len(rules) == 0 {
		rules = DefaultRules
	}
	p := Policy{loginPath: loginPath, rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		p.rules[r.Role] = r
	}
	return p
}

// LoginPath returns the unauthenticated redirect target.
func (p Policy) LoginPath() string { return p.loginPath }

// Home returns the home area for role, if the role is known.
func (p Policy) Home(role string) (string, bool) {
	r, ok := p.rules[role]
	return r.Home, ok
}

// Decide evaluates a credential against a path the matcher already
// selected. The token check always wins over role logic. A role with no rule
// is let through once authenticated.
func (p Policy) Decide(c Credential, path string) Decision {
	d := Decision{Role: c.Role, Path: path}

	if !c.Authenticated() {
		d.Outcome = RedirectLogin
		d.Target = p.loginPath
		return d
	}

	rule, ok := p.rules[c.Role]
	if !ok {
		// Roles without a row pass; area routers do their own role check.
		return d
	}

	for _, prefix := range rule.Foreign {
		if strings.HasPrefix(path, prefix) {
			d.Outcome = RedirectHome
			d.Target = rule.Home
			return d
		}
	}
	return d
}
