// internal/app/store/salaries/store.go
package salaries

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/freightdesk/internal/app/system/normalize"
	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Paid filters for List and Count.
const (
	FilterAll    = ""
	FilterPaid   = "paid"
	FilterUnpaid = "unpaid"
)

var (
	ErrNotFound    = errors.New("salary record not found")
	ErrDuplicate   = errors.New("a salary for this driver and period already exists")
	ErrAlreadyPaid = errors.New("salary already marked paid")
	errNegative    = errors.New("amounts must not be negative")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("salaries")}
}

// Create inserts an unpaid salary record.
func (s *Store) Create(ctx context.Context, sal models.Salary) (models.Salary, error) {
	if sal.BaseCents < 0 || sal.BonusCents < 0 || sal.DeductCents < 0 {
		return models.Salary{}, errNegative
	}
	now := time.Now().UTC()
	sal.ID = primitive.NewObjectID()
	sal.DriverName = normalize.Name(sal.DriverName)
	sal.DriverNameCI = text.Fold(sal.DriverName)
	sal.Paid = false
	sal.PaidAt = nil
	sal.CreatedAt = now
	sal.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sal); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Salary{}, ErrDuplicate
		}
		return models.Salary{}, err
	}
	return sal, nil
}

// MarkPaid flags an unpaid record as paid now.
func (s *Store) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "paid": false},
		bson.M{"$set": bson.M{"paid": true, "paid_at": now, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrAlreadyPaid
}

// Count counts records matching a paid filter.
func (s *Store) Count(ctx context.Context, filter string) (int64, error) {
	return s.c.CountDocuments(ctx, paidFilter(filter))
}

// UnpaidTotalCents sums the net amount of every unpaid record.
func (s *Store) UnpaidTotalCents(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paid": false}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{"$subtract": bson.A{
				bson.M{"$add": bson.A{"$base_cents", "$bonus_cents"}},
				"$deduct_cents",
			}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

// List returns one page ordered by driver name.
func (s *Store) List(ctx context.Context, filter string, q paging.Query) (paging.Page[models.Salary], error) {
	cur, err := s.c.Find(ctx, q.Filter(paidFilter(filter), "driver_name_ci"), q.FindOptions("driver_name_ci"))
	if err != nil {
		return paging.Page[models.Salary]{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Salary
	if err := cur.All(ctx, &rows); err != nil {
		return paging.Page[models.Salary]{}, err
	}
	return paging.Finish(rows, q,
		func(s models.Salary) string { return s.DriverNameCI },
		func(s models.Salary) primitive.ObjectID { return s.ID }), nil
}

func paidFilter(filter string) bson.M {
	switch filter {
	case FilterPaid:
		return bson.M{"paid": true}
	case FilterUnpaid:
		return bson.M{"paid": false}
	default:
		return bson.M{}
	}
}
