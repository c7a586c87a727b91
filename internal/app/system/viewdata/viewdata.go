// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/chrome"
	"github.com/dalemusser/freightdesk/internal/app/system/navigation"
	"github.com/dalemusser/freightdesk/internal/app/system/rolesignal"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type bookingsData struct {
//	    viewdata.BaseVM
//	    Rows []bookingRow
//	}
//
//	data := bookingsData{BaseVM: viewdata.NewBaseVM(r, "Bookings", "/admin")}
type BaseVM struct {
	SiteName string

	// Signed-in user, from the session user middleware.
	IsLoggedIn bool
	Role       string
	UserName   string

	// SignalRole is the role read from session storage for this page load,
	// empty for anonymous visitors.
	SignalRole string

	// ShowChrome wraps the page in the public navigation, footer and
	// floating buttons.
	ShowChrome bool

	// Area is set on back-office pages and drives the sidebar.
	Area    navigation.Area
	HasArea bool

	Title       string
	BackURL     string
	CurrentPath string
	Path        string
	CSRFToken   string

	// Error and Notice are flash-style messages shown above the content.
	Error  template.HTML
	Notice string
}

// NewBaseVM builds the BaseVM for a page.
//   - title: the page title
//   - backDefault: back button target when the request carries none
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)
	if !signedIn {
		role = ""
	}
	area, hasArea := navigation.AreaFor(r.URL.Path)

	return BaseVM{
		SiteName:    models.DefaultSiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		SignalRole:  rolesignal.FromRequest(r).Role(),
		ShowChrome:  chrome.ForRequest(r),
		Area:        area,
		HasArea:     hasArea,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		Path:        r.URL.Path,
		CSRFToken:   csrf.Token(r),
	}
}

// SetError sets a plain-text error message.
func (b *BaseVM) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// NavActive reports whether a sidebar item is the current page.
func (b BaseVM) NavActive(item navigation.Item) bool {
	return b.Area.Active(item, b.Path)
}
