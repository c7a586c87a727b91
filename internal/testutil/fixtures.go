package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active user whose password is password.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, loginID, role, password string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, fullName, loginID, role, password, "active")
}

// CreateDisabledUser creates a user that may not sign in.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, loginID, role, password string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, fullName, loginID, role, password, "disabled")
}

func (f *Fixtures) insertUser(ctx context.Context, fullName, loginID, role, password, status string) models.User {
	f.t.Helper()

	// MinCost keeps fixture setup fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		LoginID:      loginID,
		LoginIDCI:    text.Fold(loginID),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateBooking creates a pending booking for customer.
func (f *Fixtures) CreateBooking(ctx context.Context, reference, customer string) models.Booking {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Booking{
		ID:          primitive.NewObjectID(),
		Reference:   reference,
		Customer:    customer,
		CustomerCI:  text.Fold(customer),
		Origin:      "Depot A",
		Destination: "Depot B",
		PickupDate:  now.Add(24 * time.Hour),
		Parcels:     1,
		Status:      models.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("bookings").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test booking: %v", err)
	}
	return b
}

// CreateSalary creates an unpaid salary record.
func (f *Fixtures) CreateSalary(ctx context.Context, driver, period string, baseCents int64) models.Salary {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Salary{
		ID:           primitive.NewObjectID(),
		DriverName:   driver,
		DriverNameCI: text.Fold(driver),
		Period:       period,
		BaseCents:    baseCents,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("salaries").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test salary: %v", err)
	}
	return s
}

// CreateIncident creates an open incident.
func (f *Fixtures) CreateIncident(ctx context.Context, reference, severity string) models.Incident {
	f.t.Helper()

	now := time.Now().UTC()
	in := models.Incident{
		ID:          primitive.NewObjectID(),
		Reference:   reference,
		Category:    "delay",
		Severity:    severity,
		Description: "Late pickup",
		Status:      models.IncidentOpen,
		ReportedBy:  "Test Coordinator",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("incidents").InsertOne(ctx, in); err != nil {
		f.t.Fatalf("failed to create test incident: %v", err)
	}
	return in
}

// CreateOrder creates an assigned order of the given kind.
func (f *Fixtures) CreateOrder(ctx context.Context, reference, kind, recipient string) models.Order {
	f.t.Helper()

	now := time.Now().UTC()
	o := models.Order{
		ID:          primitive.NewObjectID(),
		Reference:   reference,
		Kind:        kind,
		Recipient:   recipient,
		RecipientCI: text.Fold(recipient),
		Address:     "1 Test Street",
		Status:      models.OrderAssigned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("orders").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("failed to create test order: %v", err)
	}
	return o
}
