// internal/app/features/courier/routes.go
package courier

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HomePath is where a courier lands after signing in.
const HomePath = "/courier/manage-order"

// Routes is mounted at /courier.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	})
	r.Get("/manage-order", h.ServeDeliveries)
	r.Post("/manage-order/{id}/status", h.HandleStatus)
	r.Get("/returns", h.ServeReturns)
	r.Get("/returns/new", h.ServeNewReturn)
	r.Post("/returns/new", h.HandleNewReturn)

	return r
}
