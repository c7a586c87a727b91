// internal/app/features/admin/routes.go
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /admin. mw typically carries the role check and
// session activity tracking.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)

	r.Get("/", h.ServeDashboard)

	r.Get("/bookings", h.ServeBookings)
	r.Get("/bookings/new", h.ServeNewBooking)
	r.Post("/bookings/new", h.HandleNewBooking)
	r.Post("/bookings/{id}/status", h.HandleBookingStatus)

	r.Get("/users", h.ServeUsers)
	r.Get("/users/new", h.ServeNewUser)
	r.Post("/users/new", h.HandleNewUser)
	r.Post("/users/{id}/status", h.HandleUserStatus)

	r.Get("/audit", h.ServeAudit)

	return r
}
