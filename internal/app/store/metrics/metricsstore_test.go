package metricsstore_test

import (
	"testing"

	metricsstore "github.com/dalemusser/freightdesk/internal/app/store/metrics"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/freightdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFetchDashboardCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchDashboardCounts(ctx, db)
	if counts != (metricsstore.Counts{}) {
		t.Errorf("expected all zero counts, got %+v", counts)
	}
}

func TestFetchDashboardCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateBooking(ctx, "BK-1", "Acme")
	b := fixtures.CreateBooking(ctx, "BK-2", "Globex")
	if _, err := db.Collection("bookings").UpdateOne(ctx, bson.M{"_id": b.ID},
		bson.M{"$set": bson.M{"status": models.BookingConfirmed}}); err != nil {
		t.Fatalf("update booking: %v", err)
	}

	fixtures.CreateIncident(ctx, "INC-1", models.SeverityLow)
	fixtures.CreateOrder(ctx, "ORD-1", models.OrderDelivery, "Ann")
	fixtures.CreateOrder(ctx, "ORD-2", models.OrderReturn, "Bo")
	fixtures.CreateUser(ctx, "Admin", "admin", "admin", "pw")

	counts := metricsstore.FetchDashboardCounts(ctx, db)

	want := metricsstore.Counts{
		Bookings:        2,
		PendingBookings: 1,
		OpenIncidents:   1,
		OpenOrders:      2,
		Users:           1,
	}
	if counts != want {
		t.Errorf("counts: got %+v, want %+v", counts, want)
	}
}
