// internal/app/features/coordinator/incidents.go
package coordinator

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	incidentstore "github.com/dalemusser/freightdesk/internal/app/store/incidents"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/htmlsanitize"
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

// Severities in display order.
var Severities = []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh}

var incidentStatuses = []string{models.IncidentOpen, models.IncidentResolved}

type incidentsData struct {
	viewdata.BaseVM
	Status   string
	Statuses []string
	Rows     []incidentRow
	Pager    paging.Nav
}

type incidentRow struct {
	ID             string
	Reference      string
	OrderReference string
	Category       string
	Severity       string
	Description    template.HTML
	ReportedBy     string
	Filed          string
	Open           bool
}

type incidentForm struct {
	viewdata.BaseVM
	Categories     []string
	Severities     []string
	OrderReference string
	Category       string
	Severity       string
	Description    string
}

type incidentInput struct {
	OrderReference string `validate:"max=40" label:"Order reference"`
	Category       string `validate:"required,oneof=damage delay loss accident other" label:"Category"`
	Severity       string `validate:"required,oneof=low medium high" label:"Severity"`
	Description    string `validate:"required,max=4000" label:"Description"`
}

func toRow(in models.Incident) incidentRow {
	return incidentRow{
		ID:             in.ID.Hex(),
		Reference:      in.Reference,
		OrderReference: in.OrderReference,
		Category:       in.Category,
		Severity:       in.Severity,
		Description:    htmlsanitize.SanitizeToHTML(in.Description),
		ReportedBy:     in.ReportedBy,
		Filed:          in.CreatedAt.Format("2006-01-02 15:04"),
		Open:           in.Status == models.IncidentOpen,
	}
}

// cleanDescription turns form input into the stored HTML. Plain text keeps
// its line breaks; markup is reduced to the allowed set.
func cleanDescription(s string) string {
	if htmlsanitize.IsPlainText(s) {
		return string(htmlsanitize.PlainTextToHTML(s))
	}
	return htmlsanitize.Sanitize(s)
}

// ServeIncidents handles GET /coordinator/incidents. Open incidents are
// shown unless another status is asked for.
func (h *Handler) ServeIncidents(w http.ResponseWriter, r *http.Request) {
	raw := query.Get(r, "status")
	status := normalize.Filter(raw)
	switch {
	case raw == "":
		status = models.IncidentOpen
	case status != models.IncidentOpen && status != models.IncidentResolved:
		status = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Incidents.List(ctx, status, paging.FromRequest(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing incidents", err, "Unable to load incidents.", "/coordinator")
		return
	}
	rows := make([]incidentRow, 0, len(page.Rows))
	for _, in := range page.Rows {
		rows = append(rows, toRow(in))
	}

	filter := status
	if filter == "" {
		filter = "all"
	}
	templates.Render(w, r, "coordinator_incidents", incidentsData{
		BaseVM:   viewdata.NewBaseVM(r, "Incidents", "/coordinator"),
		Status:   status,
		Statuses: incidentStatuses,
		Rows:     rows,
		Pager:    paging.NavFor(r.URL.Path, page, url.Values{"status": {filter}}),
	})
}

// ServeNewIncident handles GET /coordinator/incidents/new.
func (h *Handler) ServeNewIncident(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "coordinator_incident_new", incidentForm{
		BaseVM:     viewdata.NewBaseVM(r, "Report incident", "/coordinator/incidents"),
		Categories: models.IncidentCategories,
		Severities: Severities,
		Severity:   models.SeverityMedium,
	})
}

// HandleNewIncident handles POST /coordinator/incidents/new.
func (h *Handler) HandleNewIncident(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/coordinator/incidents")
		return
	}

	form := incidentForm{
		BaseVM:         viewdata.NewBaseVM(r, "Report incident", "/coordinator/incidents"),
		Categories:     models.IncidentCategories,
		Severities:     Severities,
		OrderReference: normalize.QueryParam(r.PostFormValue("order_reference")),
		Category:       normalize.QueryParam(r.PostFormValue("category")),
		Severity:       normalize.QueryParam(r.PostFormValue("severity")),
		Description:    normalize.QueryParam(r.PostFormValue("description")),
	}
	in := incidentInput{
		OrderReference: form.OrderReference,
		Category:       form.Category,
		Severity:       form.Severity,
		Description:    form.Description,
	}
	res := inputval.Validate(in)
	desc := cleanDescription(in.Description)
	switch {
	case res.HasErrors():
		form.SetError(res.First())
	case htmlsanitize.IsBlank(desc):
		form.SetError("Description is required.")
	}
	if form.Error != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "coordinator_incident_new", form)
		return
	}

	_, name, _, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Incidents.Create(ctx, models.Incident{
		OrderReference: in.OrderReference,
		Category:       in.Category,
		Severity:       in.Severity,
		Description:    desc,
		ReportedBy:     name,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error filing incident", err, "Unable to file the incident.", "/coordinator/incidents")
		return
	}
	h.Log.Info("incident filed",
		zap.String("reference", created.Reference),
		zap.String("severity", created.Severity))

	http.Redirect(w, r, "/coordinator/incidents", http.StatusSeeOther)
}

// HandleResolve handles POST /coordinator/incidents/{id}/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad incident id", err, "Bad incident id.", "/coordinator/incidents")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Incidents.Resolve(ctx, id); err != nil {
		if errors.Is(err, incidentstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "incident not found", err, "Incident not found.", "/coordinator/incidents")
			return
		}
		h.ErrLog.LogServerError(w, r, "database error resolving incident", err, "Unable to resolve the incident.", "/coordinator/incidents")
		return
	}
	h.Log.Info("incident resolved", zap.String("id", id.Hex()))
	h.Audit.IncidentResolved(ctx, r, authz.UserID(r), id)

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    "/coordinator/incidents",
		ExcludedSubpaths: []string{"/new"},
		Fallback:         "/coordinator/incidents",
	}), http.StatusSeeOther)
}
