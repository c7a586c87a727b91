// internal/app/features/accounting/salaries.go
package accounting

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	salarystore "github.com/dalemusser/freightdesk/internal/app/store/salaries"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/inputval"
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

// PaidFilters are the choices of the paid/unpaid dropdown.
var PaidFilters = []string{salarystore.FilterUnpaid, salarystore.FilterPaid}

type dashboardData struct {
	viewdata.BaseVM
	Unpaid      int64
	Paid        int64
	UnpaidTotal string
}

type salariesData struct {
	viewdata.BaseVM
	Filter  string
	Filters []string
	Rows    []salaryRow
	Pager   paging.Nav
}

type salaryRow struct {
	ID         string
	DriverName string
	Period     string
	Base       string
	Bonus      string
	Deduct     string
	Net        string
	Paid       bool
	PaidAt     string
}

type salaryForm struct {
	viewdata.BaseVM
	DriverName string
	Period     string
	Base       string
	Bonus      string
	Deduct     string
}

type salaryInput struct {
	DriverName string `validate:"required,max=120" label:"Driver"`
	Period     string `validate:"required,period" label:"Period"`
}

func toRow(s models.Salary) salaryRow {
	row := salaryRow{
		ID:         s.ID.Hex(),
		DriverName: s.DriverName,
		Period:     s.Period,
		Base:       FormatCents(s.BaseCents),
		Bonus:      FormatCents(s.BonusCents),
		Deduct:     FormatCents(s.DeductCents),
		Net:        FormatCents(s.NetCents()),
		Paid:       s.Paid,
	}
	if s.PaidAt != nil {
		row.PaidAt = s.PaidAt.Format("2006-01-02")
	}
	return row
}

// ServeDashboard handles GET /accounting.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	unpaid, err := h.Salaries.Count(ctx, salarystore.FilterUnpaid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting salaries", err, "Unable to load the dashboard.", "/")
		return
	}
	paid, err := h.Salaries.Count(ctx, salarystore.FilterPaid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting salaries", err, "Unable to load the dashboard.", "/")
		return
	}
	total, err := h.Salaries.UnpaidTotalCents(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error summing salaries", err, "Unable to load the dashboard.", "/")
		return
	}

	templates.Render(w, r, "accounting_dashboard", dashboardData{
		BaseVM:      viewdata.NewBaseVM(r, "Dashboard", "/accounting"),
		Unpaid:      unpaid,
		Paid:        paid,
		UnpaidTotal: FormatCents(total),
	})
}

// ServeSalaries handles GET /accounting/salaries.
func (h *Handler) ServeSalaries(w http.ResponseWriter, r *http.Request) {
	filter := normalize.Filter(query.Get(r, "paid"))
	if filter != salarystore.FilterPaid && filter != salarystore.FilterUnpaid {
		filter = salarystore.FilterAll
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Salaries.List(ctx, filter, paging.FromRequest(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing salaries", err, "Unable to load salaries.", "/accounting")
		return
	}
	rows := make([]salaryRow, 0, len(page.Rows))
	for _, s := range page.Rows {
		rows = append(rows, toRow(s))
	}

	templates.Render(w, r, "accounting_salaries", salariesData{
		BaseVM:  viewdata.NewBaseVM(r, "Salaries", "/accounting"),
		Filter:  filter,
		Filters: PaidFilters,
		Rows:    rows,
		Pager:   paging.NavFor(r.URL.Path, page, url.Values{"paid": {filter}}),
	})
}

// ServeNewSalary handles GET /accounting/salaries/new.
func (h *Handler) ServeNewSalary(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "accounting_salary_new", salaryForm{
		BaseVM: viewdata.NewBaseVM(r, "New salary", "/accounting/salaries"),
		Period: time.Now().Format("2006-01"),
	})
}

// HandleNewSalary handles POST /accounting/salaries/new.
func (h *Handler) HandleNewSalary(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/accounting/salaries")
		return
	}

	form := salaryForm{
		BaseVM:     viewdata.NewBaseVM(r, "New salary", "/accounting/salaries"),
		DriverName: normalize.Name(r.PostFormValue("driver_name")),
		Period:     normalize.QueryParam(r.PostFormValue("period")),
		Base:       normalize.QueryParam(r.PostFormValue("base")),
		Bonus:      normalize.QueryParam(r.PostFormValue("bonus")),
		Deduct:     normalize.QueryParam(r.PostFormValue("deduct")),
	}
	if res := inputval.Validate(salaryInput{DriverName: form.DriverName, Period: form.Period}); res.HasErrors() {
		form.SetError(res.First())
		renderInvalid(w, r, form)
		return
	}

	sal := models.Salary{DriverName: form.DriverName, Period: form.Period}
	amounts := []struct {
		label string
		raw   string
		dst   *int64
	}{
		{"Base pay", form.Base, &sal.BaseCents},
		{"Bonus", form.Bonus, &sal.BonusCents},
		{"Deductions", form.Deduct, &sal.DeductCents},
	}
	for _, a := range amounts {
		cents, err := ParseCents(a.raw)
		if err != nil {
			form.SetError(a.label + " " + err.Error() + ".")
			renderInvalid(w, r, form)
			return
		}
		*a.dst = cents
	}
	if sal.BaseCents == 0 {
		form.SetError("Base pay is required.")
		renderInvalid(w, r, form)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Salaries.Create(ctx, sal)
	if errors.Is(err, salarystore.ErrDuplicate) {
		form.SetError("A salary for this driver and period already exists.")
		renderInvalid(w, r, form)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating salary", err, "Unable to save the salary.", "/accounting/salaries")
		return
	}
	h.Log.Info("salary recorded",
		zap.String("driver", created.DriverName),
		zap.String("period", created.Period),
		zap.Int64("net_cents", created.NetCents()))

	http.Redirect(w, r, "/accounting/salaries?paid=unpaid", http.StatusSeeOther)
}

// HandleMarkPaid handles POST /accounting/salaries/{id}/paid.
func (h *Handler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad salary id", err, "Bad salary id.", "/accounting/salaries")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	switch err := h.Salaries.MarkPaid(ctx, id); {
	case errors.Is(err, salarystore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "salary not found", err, "Salary record not found.", "/accounting/salaries")
		return
	case errors.Is(err, salarystore.ErrAlreadyPaid):
		// Double submit; nothing to do.
	case err != nil:
		h.ErrLog.LogServerError(w, r, "database error marking salary paid", err, "Unable to update the salary.", "/accounting/salaries")
		return
	default:
		h.Log.Info("salary marked paid", zap.String("id", id.Hex()))
		h.Audit.SalaryPaid(ctx, r, authz.UserID(r), id)
	}

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    "/accounting/salaries",
		ExcludedSubpaths: []string{"/new"},
		Fallback:         "/accounting/salaries",
	}), http.StatusSeeOther)
}

func renderInvalid(w http.ResponseWriter, r *http.Request, form salaryForm) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "accounting_salary_new", form)
}
