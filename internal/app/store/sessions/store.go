// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no session matches.
var ErrNotFound = errors.New("session not found")

// Store tracks issued credentials.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Create records a freshly issued credential. Any open sessions for the
// same user are closed as inactive first.
func (s *Store) Create(ctx context.Context, tokenHash string, userID primitive.ObjectID, role, ip, userAgent string) (models.Session, error) {
	now := time.Now().UTC()

	if _, err := s.closeWhere(ctx, bson.M{"user_id": userID, "logout_at": nil}, models.EndInactive, now); err != nil {
		return models.Session{}, err
	}

	sess := models.Session{
		ID:           primitive.NewObjectID(),
		TokenHash:    tokenHash,
		UserID:       userID,
		Role:         role,
		LoginAt:      now,
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// GetByToken loads the session for a token hash.
func (s *Store) GetByToken(ctx context.Context, tokenHash string) (models.Session, error) {
	var sess models.Session
	err := s.c.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&sess)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Session{}, ErrNotFound
	}
	return sess, err
}

// SessionOpen reports whether the session for a token hash exists and has
// not been closed. Lookup errors count as closed. It implements
// auth.SessionChecker.
func (s *Store) SessionOpen(ctx context.Context, tokenHash string) bool {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	sess, err := s.GetByToken(ctx, tokenHash)
	if err != nil {
		return false
	}
	return sess.IsOpen()
}

// CloseByToken ends the open session for a token hash with the given reason.
// It reports whether a session was closed.
func (s *Store) CloseByToken(ctx context.Context, tokenHash, reason string) (bool, error) {
	n, err := s.closeWhere(ctx, bson.M{"token_hash": tokenHash, "logout_at": nil}, reason, time.Now().UTC())
	return n > 0, err
}

// Touch moves last_active_at forward on an open session.
func (s *Store) Touch(ctx context.Context, tokenHash string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// CountActive counts sessions that are still open.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"logout_at": nil})
}

// ListByUser returns the user's most recent sessions, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "login_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CloseInactive closes open sessions idle longer than threshold.
func (s *Store) CloseInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	now := time.Now().UTC()
	return s.closeWhere(ctx, bson.M{
		"logout_at":      nil,
		"last_active_at": bson.M{"$lt": now.Add(-threshold)},
	}, models.EndInactive, now)
}

// closeWhere sets logout_at, end_reason and duration_secs on every match.
// The duration depends on each document's login_at, so this uses an
// update pipeline.
func (s *Store) closeWhere(ctx context.Context, filter bson.M, reason string, now time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"logout_at":  now,
			"end_reason": reason,
			"duration_secs": bson.M{"$toLong": bson.M{
				"$divide": bson.A{bson.M{"$subtract": bson.A{now, "$login_at"}}, 1000},
			}},
		}}},
	}
	res, err := s.c.UpdateMany(ctx, filter, pipeline)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
