package coordinator

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/freightdesk/internal/app/features/errors"
	"github.com/dalemusser/freightdesk/internal/app/store/audit"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/freightdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func coordinatorRequest(method, target string, form url.Values) *http.Request {
	var r *http.Request
	if form == nil {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = testutil.NewFormRequest(method, target, form)
	}
	return testutil.WithUser(r, testutil.CoordinatorUser())
}

func TestCleanDescription(t *testing.T) {
	tests := map[string]string{
		"Van scraped\nat gate":                        "Van scraped<br>at gate",
		"<p>ok <strong>now</strong></p>":              "<p>ok <strong>now</strong></p>",
		`<p onclick="x()">hi</p><script>x()</script>`: "<p>hi</p>",
	}
	for in, want := range tests {
		if got := cleanDescription(in); got != want {
			t.Errorf("cleanDescription(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIncidentsTemplate(t *testing.T) {
	r := coordinatorRequest(http.MethodGet, "/coordinator/incidents", nil)
	tmpl := testutil.ParseTemplates(t, FS)

	open := toRow(models.Incident{
		ID:          primitive.NewObjectID(),
		Reference:   "IN-20261018-AAAA",
		Category:    "damage",
		Severity:    models.SeverityHigh,
		Description: "<p>Crate <em>crushed</em></p>",
		Status:      models.IncidentOpen,
		ReportedBy:  "Cam",
		CreatedAt:   time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	})
	resolved := toRow(models.Incident{ID: primitive.NewObjectID(), Reference: "IN-2", Status: models.IncidentResolved})

	out := testutil.ExecuteTemplate(t, tmpl, "coordinator_incidents", incidentsData{
		BaseVM:   viewdata.NewBaseVM(r, "Incidents", "/coordinator"),
		Status:   models.IncidentOpen,
		Statuses: incidentStatuses,
		Rows:     []incidentRow{open, resolved},
	})

	if !strings.Contains(out, "<p>Crate <em>crushed</em></p>") {
		t.Error("sanitized description should render as HTML")
	}
	if !strings.Contains(out, "/coordinator/incidents/"+open.ID+"/resolve") {
		t.Error("open incident should offer resolve")
	}
	if strings.Contains(out, "/coordinator/incidents/"+resolved.ID+"/resolve") {
		t.Error("resolved incident should not offer resolve")
	}
	if !strings.Contains(out, "2026-10-18 09:30 by Cam") {
		t.Error("filing details missing")
	}
}

func TestBookingsTemplate_ReadOnly(t *testing.T) {
	r := coordinatorRequest(http.MethodGet, "/coordinator/bookings", nil)
	tmpl := testutil.ParseTemplates(t, FS)

	out := testutil.ExecuteTemplate(t, tmpl, "coordinator_bookings", bookingsData{
		BaseVM: viewdata.NewBaseVM(r, "Bookings", "/coordinator"),
		Rows:   []models.Booking{{ID: primitive.NewObjectID(), Reference: "BK-1", Customer: "Acme", Status: models.BookingPending}},
	})

	if !strings.Contains(out, "BK-1") {
		t.Error("booking row missing")
	}
	if strings.Contains(out, "/status") {
		t.Error("coordinator bookings must not offer status changes")
	}
}

func TestHandleNewIncident_Invalid(t *testing.T) {
	h := &Handler{ErrLog: uierrors.NewErrorLogger(zap.NewNop()), Log: zap.NewNop()}
	cases := map[string]url.Values{
		"bad category":      {"category": {"weather"}, "severity": {"low"}, "description": {"Rain"}},
		"bad severity":      {"category": {"delay"}, "severity": {"urgent"}, "description": {"Rain"}},
		"empty description": {"category": {"delay"}, "severity": {"low"}, "description": {"  "}},
		"only markup":       {"category": {"delay"}, "severity": {"low"}, "description": {"<script>x()</script>"}},
	}
	for name, form := range cases {
		rec := httptest.NewRecorder()
		testutil.ServeTolerant(h.HandleNewIncident, rec, coordinatorRequest(http.MethodPost, "/coordinator/incidents/new", form))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", name, rec.Code)
		}
	}
}

func TestHandleNewIncident_FilesAndResolves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{}), uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	form := url.Values{
		"order_reference": {"OR-77"},
		"category":        {"damage"},
		"severity":        {"high"},
		"description":     {`<p>Box split <a href="javascript:x()">open</a></p>`},
	}
	rec := httptest.NewRecorder()
	h.HandleNewIncident(rec, coordinatorRequest(http.MethodPost, "/coordinator/incidents/new", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("file: status = %d, want 303", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	var in models.Incident
	if err := db.Collection("incidents").FindOne(ctx, bson.M{"order_reference": "OR-77"}).Decode(&in); err != nil {
		t.Fatalf("incident not stored: %v", err)
	}
	if strings.Contains(in.Description, "javascript") || strings.Contains(in.Description, "<a") {
		t.Errorf("description not sanitized: %q", in.Description)
	}
	if in.ReportedBy != "Test coordinator" || in.Status != models.IncidentOpen {
		t.Errorf("unexpected incident: %+v", in)
	}

	id := in.ID.Hex()
	rec = httptest.NewRecorder()
	r := testutil.WithChiURLParam(coordinatorRequest(http.MethodPost, "/coordinator/incidents/"+id+"/resolve", url.Values{}), "id", id)
	h.HandleResolve(rec, r)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("resolve: status = %d, want 303", rec.Code)
	}
	if n, _ := h.Incidents.Count(ctx, models.IncidentOpen); n != 0 {
		t.Errorf("open incidents = %d, want 0", n)
	}

	events, err := audit.New(db).Query(ctx, audit.QueryFilter{Category: audit.CategoryOperations})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventIncidentResolved || events[0].Subject != id {
		t.Errorf("expected one incident_resolved event for %s, got %+v", id, events)
	}
}
