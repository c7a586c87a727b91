package accounting

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

func accountingRequest(method, target string, form url.Values) *http.Request {
	var r *http.Request
	if form == nil {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = testutil.NewFormRequest(method, target, form)
	}
	return testutil.WithUser(r, testutil.AccountingUser())
}

func offlineHandler() *Handler {
	return &Handler{ErrLog: uierrors.NewErrorLogger(zap.NewNop()), Log: zap.NewNop()}
}

func TestToRow(t *testing.T) {
	paidAt := time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC)
	row := toRow(models.Salary{
		ID:          primitive.NewObjectID(),
		DriverName:  "Sam Wheeler",
		Period:      "2026-09",
		BaseCents:   250000,
		BonusCents:  15050,
		DeductCents: 5000,
		Paid:        true,
		PaidAt:      &paidAt,
	})
	if row.Net != "2,600.50" {
		t.Errorf("Net = %q, want 2,600.50", row.Net)
	}
	if row.PaidAt != "2026-09-30" {
		t.Errorf("PaidAt = %q", row.PaidAt)
	}
}

func TestSalariesTemplate(t *testing.T) {
	r := accountingRequest(http.MethodGet, "/accounting/salaries", nil)
	tmpl := testutil.ParseTemplates(t, FS)

	unpaid := salaryRow{ID: primitive.NewObjectID().Hex(), DriverName: "Sam Wheeler", Period: "2026-09", Net: "2,500.00"}
	paid := salaryRow{ID: primitive.NewObjectID().Hex(), DriverName: "Ola Lorry", Period: "2026-08", Net: "1,900.00", Paid: true, PaidAt: "2026-09-01"}

	out := testutil.ExecuteTemplate(t, tmpl, "accounting_salaries", salariesData{
		BaseVM:  viewdata.NewBaseVM(r, "Salaries", "/accounting"),
		Filters: PaidFilters,
		Rows:    []salaryRow{unpaid, paid},
	})

	if !strings.Contains(out, "/accounting/salaries/"+unpaid.ID+"/paid") {
		t.Error("unpaid row should offer Mark paid")
	}
	if strings.Contains(out, "/accounting/salaries/"+paid.ID+"/paid") {
		t.Error("paid row should not offer Mark paid")
	}
	if !strings.Contains(out, "2,500.00") || !strings.Contains(out, "paid 2026-09-01") {
		t.Error("amounts and paid date should render")
	}
	if !strings.Contains(out, `href="/accounting/salaries/new"`) {
		t.Error("missing new salary link")
	}
}

func TestHandleNewSalary_Invalid(t *testing.T) {
	h := offlineHandler()
	cases := map[string]url.Values{
		"missing driver": {"period": {"2026-09"}, "base": {"100"}},
		"bad period":     {"driver_name": {"Sam"}, "period": {"2026-13"}, "base": {"100"}},
		"bad amount":     {"driver_name": {"Sam"}, "period": {"2026-09"}, "base": {"lots"}},
		"negative bonus": {"driver_name": {"Sam"}, "period": {"2026-09"}, "base": {"100"}, "bonus": {"-5"}},
		"zero base":      {"driver_name": {"Sam"}, "period": {"2026-09"}, "base": {"0"}},
	}
	for name, form := range cases {
		rec := httptest.NewRecorder()
		testutil.ServeTolerant(h.HandleNewSalary, rec, accountingRequest(http.MethodPost, "/accounting/salaries/new", form))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", name, rec.Code)
		}
	}
}

func TestHandleNewSalary_CreatesThenMarksPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{}), uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	form := url.Values{"driver_name": {"Sam Wheeler"}, "period": {"2026-09"}, "base": {"2,500"}, "bonus": {"150.50"}, "deduct": {"50"}}
	rec := httptest.NewRecorder()
	h.HandleNewSalary(rec, accountingRequest(http.MethodPost, "/accounting/salaries/new", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create: status = %d, want 303", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	var sal models.Salary
	if err := db.Collection("salaries").FindOne(ctx, bson.M{"driver_name": "Sam Wheeler"}).Decode(&sal); err != nil {
		t.Fatalf("salary not stored: %v", err)
	}
	if sal.NetCents() != 260050 {
		t.Errorf("net = %d, want 260050", sal.NetCents())
	}

	total, err := h.Salaries.UnpaidTotalCents(ctx)
	if err != nil || total != 260050 {
		t.Fatalf("UnpaidTotalCents = %d, %v", total, err)
	}

	id := sal.ID.Hex()
	for i := 0; i < 2; i++ {
		rec = httptest.NewRecorder()
		r := testutil.WithChiURLParam(accountingRequest(http.MethodPost, "/accounting/salaries/"+id+"/paid", url.Values{}), "id", id)
		h.HandleMarkPaid(rec, r)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("mark paid #%d: status = %d, want 303", i+1, rec.Code)
		}
	}

	if total, _ := h.Salaries.UnpaidTotalCents(ctx); total != 0 {
		t.Errorf("unpaid total after payment = %d, want 0", total)
	}

	// The repeated submit is a no-op and is not audited again.
	events, err := audit.New(db).Query(ctx, audit.QueryFilter{EventType: audit.EventSalaryPaid})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 || events[0].Subject != id || events[0].ActorID == nil {
		t.Errorf("expected one salary_paid event for %s, got %+v", id, events)
	}
}

func TestHandleMarkPaid_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{}), uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())

	id := primitive.NewObjectID().Hex()
	rec := httptest.NewRecorder()
	r := testutil.WithChiURLParam(accountingRequest(http.MethodPost, "/accounting/salaries/"+id+"/paid", url.Values{}), "id", id)
	testutil.ServeTolerant(h.HandleMarkPaid, rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
