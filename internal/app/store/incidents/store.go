// internal/app/store/incidents/store.go
package incidents

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/app/system/refs"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("incident not found")
	ErrDuplicate = errors.New("incident reference already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("incidents")}
}

// Create files an open incident. Description must already be sanitized.
func (s *Store) Create(ctx context.Context, in models.Incident) (models.Incident, error) {
	now := time.Now().UTC()
	in.ID = primitive.NewObjectID()
	if in.Reference == "" {
		in.Reference = refs.New(refs.Incident, now)
	}
	in.Status = models.IncidentOpen
	in.CreatedAt = now
	in.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, in); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Incident{}, ErrDuplicate
		}
		return models.Incident{}, err
	}
	return in, nil
}

// Resolve closes an incident.
func (s *Store) Resolve(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.IncidentResolved, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count counts incidents, optionally only those with status.
func (s *Store) Count(ctx context.Context, status string) (int64, error) {
	return s.c.CountDocuments(ctx, statusFilter(status))
}

// List returns one page ordered by reference, which starts with the filing date.
func (s *Store) List(ctx context.Context, status string, q paging.Query) (paging.Page[models.Incident], error) {
	cur, err := s.c.Find(ctx, q.Filter(statusFilter(status), "reference"), q.FindOptions("reference"))
	if err != nil {
		return paging.Page[models.Incident]{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Incident
	if err := cur.All(ctx, &rows); err != nil {
		return paging.Page[models.Incident]{}, err
	}
	return paging.Finish(rows, q,
		func(in models.Incident) string { return in.Reference },
		func(in models.Incident) primitive.ObjectID { return in.ID }), nil
}

func statusFilter(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}
