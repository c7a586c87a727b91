package metricsstore

import (
	"context"

	"github.com/dalemusser/freightdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Bookings        int64
	PendingBookings int64
	OpenIncidents   int64
	OpenOrders      int64
	Users           int64
	ActiveSessions  int64
}

// FetchDashboardCounts returns the high-level counts used by dashboards.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	count := func(coll string, filter bson.M, dst *int64) {
		if n, err := db.Collection(coll).CountDocuments(ctx, filter); err == nil {
			*dst = n
		}
	}

	count("bookings", bson.M{}, &out.Bookings)
	count("bookings", bson.M{"status": models.BookingPending}, &out.PendingBookings)
	count("incidents", bson.M{"status": models.IncidentOpen}, &out.OpenIncidents)
	count("orders", bson.M{"status": bson.M{"$nin": bson.A{models.OrderDelivered, models.OrderFailed}}}, &out.OpenOrders)
	count("users", bson.M{}, &out.Users)
	count("sessions", bson.M{"logout_at": nil}, &out.ActiveSessions)

	return out
}
