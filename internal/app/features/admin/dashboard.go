// internal/app/features/admin/dashboard.go
package admin

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/freightdesk/internal/app/store/metrics"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type dashboardData struct {
	viewdata.BaseVM
	Counts metricsstore.Counts
}

// ServeDashboard handles GET /admin.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	templates.Render(w, r, "admin_dashboard", dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/admin"),
		Counts: metricsstore.FetchDashboardCounts(ctx, h.DB),
	})
}
