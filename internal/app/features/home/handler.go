// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Service is one card on the landing page.
type Service struct {
	Name    string
	Summary string
}

// Services are the offerings shown on the landing page.
var Services = []Service{
	{"Same-day courier", "Collected within the hour and delivered across the metro area before close of business."},
	{"Scheduled freight", "Pallets and bulk consignments booked ahead with a fixed pickup window."},
	{"Returns handling", "Failed deliveries and customer returns brought back, logged and re-routed."},
}

type pageData struct {
	viewdata.BaseVM
	Services []Service
}

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "home", pageData{
		BaseVM:   viewdata.NewBaseVM(r, "Welcome", "/"),
		Services: Services,
	})
}
