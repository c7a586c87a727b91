// internal/app/features/courier/orders.go
package courier

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	orderstore "github.com/dalemusser/freightdesk/internal/app/store/orders"
	"github.com/dalemusser/freightdesk/internal/app/system/navigation"
	"github.com/dalemusser/freightdesk/internal/app/system/normalize"
	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ordersData struct {
	viewdata.BaseVM
	Kind     string
	Status   string
	Statuses []string
	Rows     []orderRow
	Pager    paging.Nav
}

type orderRow struct {
	ID        string
	Reference string
	Recipient string
	Address   string
	Courier   string
	Status    string
	Reason    string
	Open      bool
}

func toRow(o models.Order) orderRow {
	return orderRow{
		ID:        o.ID.Hex(),
		Reference: o.Reference,
		Recipient: o.Recipient,
		Address:   o.Address,
		Courier:   o.Courier,
		Status:    o.Status,
		Reason:    o.Reason,
		Open:      o.IsOpen(),
	}
}

func validStatus(status string) bool {
	for _, s := range models.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ServeDeliveries handles GET /courier/manage-order.
func (h *Handler) ServeDeliveries(w http.ResponseWriter, r *http.Request) {
	h.serveOrders(w, r, models.OrderDelivery, "courier_deliveries", "Manage orders")
}

// ServeReturns handles GET /courier/returns.
func (h *Handler) ServeReturns(w http.ResponseWriter, r *http.Request) {
	h.serveOrders(w, r, models.OrderReturn, "courier_returns", "Returns")
}

func (h *Handler) serveOrders(w http.ResponseWriter, r *http.Request, kind, tmpl, title string) {
	status := normalize.Filter(query.Get(r, "status"))
	if !validStatus(status) {
		status = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Orders.List(ctx, kind, status, paging.FromRequest(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing orders", err, "Unable to load orders.", "/",
			zap.String("kind", kind))
		return
	}
	rows := make([]orderRow, 0, len(page.Rows))
	for _, o := range page.Rows {
		rows = append(rows, toRow(o))
	}

	templates.Render(w, r, tmpl, ordersData{
		BaseVM:   viewdata.NewBaseVM(r, title, HomePath),
		Kind:     kind,
		Status:   status,
		Statuses: models.OrderStatuses,
		Rows:     rows,
		Pager:    paging.NavFor(r.URL.Path, page, url.Values{"status": {status}}),
	})
}

// HandleStatus handles POST /courier/manage-order/{id}/status for
// deliveries and returns alike.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad order id", err, "Bad order id.", HomePath)
		return
	}
	status := normalize.QueryParam(r.FormValue("status"))
	if !validStatus(status) {
		h.ErrLog.LogBadRequest(w, r, "invalid order status", nil, "Invalid status value.", HomePath,
			zap.String("status", status))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Orders.SetStatus(ctx, id, status); {
	case errors.Is(err, orderstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "order not found", err, "Order not found.", HomePath)
		return
	case errors.Is(err, orderstore.ErrClosed):
		h.ErrLog.LogBadRequest(w, r, "order already closed", err, "This order is already delivered or failed.", HomePath)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "database error updating order", err, "Unable to update the order.", HomePath)
		return
	}
	h.Log.Info("order status changed", zap.String("id", id.Hex()), zap.String("status", status))

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    "/courier",
		ExcludedSubpaths: []string{"/new"},
		Fallback:         HomePath,
	}), http.StatusSeeOther)
}
