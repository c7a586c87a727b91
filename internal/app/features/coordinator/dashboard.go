// internal/app/features/coordinator/dashboard.go
package coordinator

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type dashboardData struct {
	viewdata.BaseVM
	OpenIncidents   int64
	PendingBookings int64
	OpenDeliveries  int64
	OpenReturns     int64
}

type bookingsData struct {
	viewdata.BaseVM
	Rows  []models.Booking
	Pager paging.Nav
}

// ServeDashboard handles GET /coordinator.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var data dashboardData
	var err error
	if data.OpenIncidents, err = h.Incidents.Count(ctx, models.IncidentOpen); err == nil {
		if data.PendingBookings, err = h.Bookings.Count(ctx, models.BookingPending); err == nil {
			if data.OpenDeliveries, err = h.Orders.CountOpen(ctx, models.OrderDelivery); err == nil {
				data.OpenReturns, err = h.Orders.CountOpen(ctx, models.OrderReturn)
			}
		}
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading coordinator dashboard", err, "Unable to load the dashboard.", "/")
		return
	}

	data.BaseVM = viewdata.NewBaseVM(r, "Dashboard", "/coordinator")
	templates.Render(w, r, "coordinator_dashboard", data)
}

// ServeBookings handles GET /coordinator/bookings. Coordinators see
// bookings but cannot change them.
func (h *Handler) ServeBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Bookings.List(ctx, "", paging.FromRequest(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing bookings", err, "Unable to load bookings.", "/coordinator")
		return
	}
	templates.Render(w, r, "coordinator_bookings", bookingsData{
		BaseVM: viewdata.NewBaseVM(r, "Bookings", "/coordinator"),
		Rows:   page.Rows,
		Pager:  paging.NavFor(r.URL.Path, page, url.Values{}),
	})
}
