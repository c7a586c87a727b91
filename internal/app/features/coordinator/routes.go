// internal/app/features/coordinator/routes.go
package coordinator

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /coordinator.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)

	r.Get("/", h.ServeDashboard)
	r.Get("/incidents", h.ServeIncidents)
	r.Get("/incidents/new", h.ServeNewIncident)
	r.Post("/incidents/new", h.HandleNewIncident)
	r.Post("/incidents/{id}/resolve", h.HandleResolve)
	r.Get("/bookings", h.ServeBookings)

	return r
}
