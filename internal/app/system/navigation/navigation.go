// Package navigation holds the back-office sidebar menus and safe return
// URL handling for form pages.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// Item is one sidebar link.
type Item struct {
	Label string
	Href  string
}

// Area is a back-office section and its sidebar.
type Area struct {
	Name   string
	Title  string
	Prefix string
	Items  []Item
}

// Areas lists every back-office section in sidebar order.
var Areas = []Area{
	{
		Name: "admin", Title: "Administration", Prefix: "/admin",
		Items: []Item{
			{"Dashboard", "/admin"},
			{"Bookings", "/admin/bookings"},
			{"New booking", "/admin/bookings/new"},
			{"Users", "/admin/users"},
			{"Audit log", "/admin/audit"},
		},
	},
	{
		Name: "accounting", Title: "Accounting", Prefix: "/accounting",
		Items: []Item{
			{"Dashboard", "/accounting"},
			{"Salaries", "/accounting/salaries"},
			{"New salary", "/accounting/salaries/new"},
		},
	},
	{
		Name: "courier", Title: "Courier", Prefix: "/courier",
		Items: []Item{
			{"Manage orders", "/courier/manage-order"},
			{"Returns", "/courier/returns"},
			{"Log a return", "/courier/returns/new"},
		},
	},
	{
		Name: "coordinator", Title: "Coordination", Prefix: "/coordinator",
		Items: []Item{
			{"Dashboard", "/coordinator"},
			{"Incidents", "/coordinator/incidents"},
			{"Report incident", "/coordinator/incidents/new"},
			{"Bookings", "/coordinator/bookings"},
		},
	},
}

// AreaFor returns the area a path belongs to.
func AreaFor(path string) (Area, bool) {
	for _, a := range Areas {
		if path == a.Prefix || strings.HasPrefix(path, a.Prefix+"/") {
			return a, true
		}
	}
	return Area{}, false
}

// Active reports whether item is the current page. Dashboards only match
// exactly; other links also match their sub-paths.
func (a Area) Active(item Item, path string) bool {
	if item.Href == a.Prefix {
		return path == a.Prefix
	}
	return path == item.Href || strings.HasPrefix(path, item.Href+"/")
}

// BackURLOptions configures SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix. Empty allows any local URL.
	AllowedPrefix string

	// ExcludedSubpaths reject return URLs pointing back at action pages.
	ExcludedSubpaths []string

	Fallback string
}

// SafeBackURL reads the "return" query or form value and accepts it only
// when it is a local URL under AllowedPrefix that avoids the excluded
// subpaths. Otherwise Fallback is returned.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if ret == "" {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, excluded := range opts.ExcludedSubpaths {
		if strings.Contains(ret, excluded) {
			return opts.Fallback
		}
	}
	return ret
}
