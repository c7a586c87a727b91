// internal/app/features/accounting/routes.go
package accounting

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /accounting.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)

	r.Get("/", h.ServeDashboard)
	r.Get("/salaries", h.ServeSalaries)
	r.Get("/salaries/new", h.ServeNewSalary)
	r.Post("/salaries/new", h.HandleNewSalary)
	r.Post("/salaries/{id}/paid", h.HandleMarkPaid)

	return r
}
