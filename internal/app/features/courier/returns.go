// internal/app/features/courier/returns.go
package courier

import (
	"context"
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/inputval"
	"github.com/dalemusser/freightdesk/internal/app/system/normalize"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ReturnReasons are the choices offered when logging a return.
var ReturnReasons = []string{"refused", "damaged", "wrong-item", "not-home", "other"}

type returnForm struct {
	viewdata.BaseVM
	Reasons   []string
	Recipient string
	Address   string
	Reason    string
}

type returnInput struct {
	Recipient string `validate:"required,max=120" label:"Recipient"`
	Address   string `validate:"required,max=200" label:"Address"`
	Reason    string `validate:"required,oneof=refused damaged wrong-item not-home other" label:"Reason"`
}

// ServeNewReturn handles GET /courier/returns/new.
func (h *Handler) ServeNewReturn(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "courier_return_new", returnForm{
		BaseVM:  viewdata.NewBaseVM(r, "Log a return", "/courier/returns"),
		Reasons: ReturnReasons,
	})
}

// HandleNewReturn handles POST /courier/returns/new. The return is
// assigned to the signed-in courier.
func (h *Handler) HandleNewReturn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/courier/returns")
		return
	}

	form := returnForm{
		BaseVM:    viewdata.NewBaseVM(r, "Log a return", "/courier/returns"),
		Reasons:   ReturnReasons,
		Recipient: normalize.Name(r.PostFormValue("recipient")),
		Address:   normalize.Name(r.PostFormValue("address")),
		Reason:    normalize.QueryParam(r.PostFormValue("reason")),
	}
	in := returnInput{Recipient: form.Recipient, Address: form.Address, Reason: form.Reason}
	if res := inputval.Validate(in); res.HasErrors() {
		form.SetError(res.First())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "courier_return_new", form)
		return
	}

	_, name, _, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	o, err := h.Orders.Create(ctx, models.Order{
		Kind:      models.OrderReturn,
		Recipient: in.Recipient,
		Address:   in.Address,
		Reason:    in.Reason,
		Courier:   name,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error logging return", err, "Unable to log the return.", "/courier/returns")
		return
	}
	h.Log.Info("return logged", zap.String("reference", o.Reference), zap.String("courier", name))

	http.Redirect(w, r, "/courier/returns", http.StatusSeeOther)
}
