// internal/app/store/orders/store.go
package orders

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
	ErrNotFound  = errors.New("order not found")
	ErrDuplicate = errors.New("order reference already exists")
	ErrClosed    = errors.New("order is already delivered or failed")
	errBadKind   = errors.New(`kind must be "delivery"|"return"`)
	errBadStatus = errors.New("unknown order status")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("orders")}
}

// Create inserts an assigned order of o.Kind.
func (s *Store) Create(ctx context.Context, o models.Order) (models.Order, error) {
	if o.Kind != models.OrderDelivery && o.Kind != models.OrderReturn {
		return models.Order{}, errBadKind
	}
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	if o.Reference == "" {
		o.Reference = refs.New(refs.Order, now)
	}
	o.Recipient = normalize.Name(o.Recipient)
	o.RecipientCI = text.Fold(o.Recipient)
	o.Status = models.OrderAssigned
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, o); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Order{}, ErrDuplicate
		}
		return models.Order{}, err
	}
	return o, nil
}

// GetByID loads one order.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrNotFound
	}
	return o, err
}

// SetStatus moves an open order to status. Delivered and failed orders
// are final.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !validStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$nin": bson.A{models.OrderDelivered, models.OrderFailed}}},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrClosed
}

// CountOpen counts orders of kind (any kind when "") not yet delivered or failed.
func (s *Store) CountOpen(ctx context.Context, kind string) (int64, error) {
	f := bson.M{"status": bson.M{"$nin": bson.A{models.OrderDelivered, models.OrderFailed}}}
	if kind != "" {
		f["kind"] = kind
	}
	return s.c.CountDocuments(ctx, f)
}

// List returns one page of orders of kind ordered by recipient, optionally
// limited to one status.
func (s *Store) List(ctx context.Context, kind, status string, q paging.Query) (paging.Page[models.Order], error) {
	base := bson.M{"kind": kind}
	if status != "" {
		base["status"] = status
	}
	cur, err := s.c.Find(ctx, q.Filter(base, "recipient_ci"), q.FindOptions("recipient_ci"))
	if err != nil {
		return paging.Page[models.Order]{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Order
	if err := cur.All(ctx, &rows); err != nil {
		return paging.Page[models.Order]{}, err
	}
	return paging.Finish(rows, q,
		func(o models.Order) string { return o.RecipientCI },
		func(o models.Order) primitive.ObjectID { return o.ID }), nil
}

func validStatus(status string) bool {
	for _, s := range models.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
