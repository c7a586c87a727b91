// internal/app/features/contact/handler.go
package contact

import (
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Office is a depot listed on the contact page.
type Office struct {
	City  string
	Phone string
	Email string
}

var Offices = []Office{
	{City: "Head office", Phone: "+1 555 0100", Email: "dispatch@freightdesk.example"},
	{City: "North depot", Phone: "+1 555 0140", Email: "north@freightdesk.example"},
}

type pageData struct {
	viewdata.BaseVM
	Offices []Office
}

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		Log: logger,
	}
}

func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "contact", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Contact", "/"),
		Offices: Offices,
	})
}
