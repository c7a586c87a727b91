// internal/app/features/admin/bookings.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	bookingstore "github.com/dalemusser/freightdesk/internal/app/store/bookings"
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

// BookingStatuses are the filter and status choices on the bookings table.
var BookingStatuses = []string{models.BookingPending, models.BookingConfirmed, models.BookingCancelled}

const pickupLayout = "2006-01-02"

type bookingsData struct {
	viewdata.BaseVM
	Status   string
	Statuses []string
	Rows     []models.Booking
	Pager    paging.Nav
}

type bookingForm struct {
	viewdata.BaseVM
	Customer    string
	Phone       string
	Origin      string
	Destination string
	PickupDate  string
	Parcels     string
}

type bookingInput struct {
	Customer    string `validate:"required,max=120" label:"Customer"`
	Phone       string `validate:"max=40" label:"Phone"`
	Origin      string `validate:"required,max=200" label:"Origin"`
	Destination string `validate:"required,max=200" label:"Destination"`
	PickupDate  string `validate:"required,datetime=2006-01-02" label:"Pickup date"`
	Parcels     int    `validate:"required,min=1,max=500" label:"Parcels"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/bookings                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	data, err := h.loadBookings(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing bookings", err, "Unable to load bookings.", "/admin")
		return
	}
	templates.Render(w, r, "admin_bookings", data)
}

func (h *Handler) loadBookings(ctx context.Context, r *http.Request) (bookingsData, error) {
	status := normalize.Filter(query.Get(r, "status"))
	if !oneOf(status, BookingStatuses) {
		status = ""
	}
	page, err := h.Bookings.List(ctx, status, paging.FromRequest(r))
	if err != nil {
		return bookingsData{}, err
	}
	return bookingsData{
		BaseVM:   viewdata.NewBaseVM(r, "Bookings", "/admin"),
		Status:   status,
		Statuses: BookingStatuses,
		Rows:     page.Rows,
		Pager:    paging.NavFor(r.URL.Path, page, url.Values{"status": {status}}),
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET|POST /admin/bookings/new                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNewBooking(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "admin_booking_new", bookingForm{
		BaseVM:     viewdata.NewBaseVM(r, "New booking", "/admin/bookings"),
		PickupDate: time.Now().Format(pickupLayout),
		Parcels:    "1",
	})
}

func (h *Handler) HandleNewBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/bookings")
		return
	}

	form := bookingForm{
		BaseVM:      viewdata.NewBaseVM(r, "New booking", "/admin/bookings"),
		Customer:    normalize.Name(r.PostFormValue("customer")),
		Phone:       normalize.QueryParam(r.PostFormValue("phone")),
		Origin:      normalize.Name(r.PostFormValue("origin")),
		Destination: normalize.Name(r.PostFormValue("destination")),
		PickupDate:  normalize.QueryParam(r.PostFormValue("pickup_date")),
		Parcels:     normalize.QueryParam(r.PostFormValue("parcels")),
	}
	parcels, _ := strconv.Atoi(form.Parcels)

	in := bookingInput{
		Customer:    form.Customer,
		Phone:       form.Phone,
		Origin:      form.Origin,
		Destination: form.Destination,
		PickupDate:  form.PickupDate,
		Parcels:     parcels,
	}
	if res := inputval.Validate(in); res.HasErrors() {
		form.SetError(res.First())
		renderInvalid(w, r, "admin_booking_new", form)
		return
	}
	pickup, _ := time.Parse(pickupLayout, in.PickupDate)

	b := models.Booking{
		Customer:    in.Customer,
		Phone:       in.Phone,
		Origin:      in.Origin,
		Destination: in.Destination,
		PickupDate:  pickup.UTC(),
		Parcels:     in.Parcels,
	}
	if uid := authz.UserID(r); !uid.IsZero() {
		b.CreatedByID = &uid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Bookings.Create(ctx, b)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating booking", err, "Unable to save the booking.", "/admin/bookings")
		return
	}
	h.Log.Info("booking created", zap.String("reference", created.Reference))

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    "/admin/bookings",
		ExcludedSubpaths: []string{"/new"},
		Fallback:         "/admin/bookings",
	}), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/bookings/{id}/status                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad booking id", err, "Bad booking id.", "/admin/bookings")
		return
	}
	status := normalize.QueryParam(r.FormValue("status"))
	if !oneOf(status, BookingStatuses) {
		h.ErrLog.LogBadRequest(w, r, "invalid booking status", nil, "Invalid status value.", "/admin/bookings",
			zap.String("status", status))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Bookings.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, bookingstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "booking not found", err, "Booking not found.", "/admin/bookings")
			return
		}
		h.ErrLog.LogServerError(w, r, "database error updating booking", err, "Unable to update the booking.", "/admin/bookings")
		return
	}
	h.Log.Info("booking status changed", zap.String("id", id.Hex()), zap.String("status", status))

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix: "/admin/bookings",
		Fallback:      "/admin/bookings",
	}), http.StatusSeeOther)
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

// renderInvalid re-renders a form with 422 after failed validation.
func renderInvalid(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, name, data)
}
