// internal/app/store/bookings/store.go
package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/freightdesk/internal/app/system/normalize"
	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/app/system/refs"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("booking not found")
	ErrDuplicate = errors.New("booking reference already exists")
	errBadStatus = errors.New(`status must be "pending"|"confirmed"|"cancelled"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bookings")}
}

// Create assigns an id and reference, normalizes names and inserts b as pending.
func (s *Store) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	if b.Reference == "" {
		b.Reference = refs.New(refs.Booking, now)
	}
	b.Customer = normalize.Name(b.Customer)
	b.CustomerCI = text.Fold(b.Customer)
	b.Origin = normalize.Name(b.Origin)
	b.Destination = normalize.Name(b.Destination)
	b.Status = models.BookingPending
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Booking{}, ErrDuplicate
		}
		return models.Booking{}, err
	}
	return b, nil
}

// GetByID loads one booking.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Booking, error) {
	var b models.Booking
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Booking{}, ErrNotFound
	}
	return b, err
}

// SetStatus moves a booking to status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch status {
	case models.BookingPending, models.BookingConfirmed, models.BookingCancelled:
	default:
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count counts bookings, optionally only those with status.
func (s *Store) Count(ctx context.Context, status string) (int64, error) {
	return s.c.CountDocuments(ctx, statusFilter(status))
}

// List returns one page ordered by customer name.
func (s *Store) List(ctx context.Context, status string, q paging.Query) (paging.Page[models.Booking], error) {
	cur, err := s.c.Find(ctx, q.Filter(statusFilter(status), "customer_ci"), q.FindOptions("customer_ci"))
	if err != nil {
		return paging.Page[models.Booking]{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Booking
	if err := cur.All(ctx, &rows); err != nil {
		return paging.Page[models.Booking]{}, err
	}
	return paging.Finish(rows, q,
		func(b models.Booking) string { return b.CustomerCI },
		func(b models.Booking) primitive.ObjectID { return b.ID }), nil
}

func statusFilter(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}
