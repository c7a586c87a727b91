// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/freightdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("bookings", bookingsSchema())
	ensure("salaries", salariesSchema())
	ensure("incidents", incidentsSchema())
	ensure("orders", ordersSchema())

	// Sessions are written only by the login flow; no validator.
	ensure("sessions", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enumOf(values ...string) bson.M {
	a := make(bson.A, 0, len(values))
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"login_id", "login_id_ci", "full_name", "password_hash", "role", "status"},
			"properties": bson.M{
				"login_id":      nonBlank,
				"login_id_ci":   nonBlank,
				"full_name":     nonBlank,
				"full_name_ci":  bson.M{"bsonType": "string"},
				"password_hash": nonBlank,
				"role":          enumOf(models.Roles...),
				"status":        enumOf(models.StatusActive, models.StatusDisabled),
			},
		},
	}
}

func bookingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"reference", "customer", "customer_ci", "origin", "destination", "parcels", "status"},
			"properties": bson.M{
				"reference":   nonBlank,
				"customer":    nonBlank,
				"customer_ci": nonBlank,
				"origin":      nonBlank,
				"destination": nonBlank,
				"parcels":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"status":      enumOf(models.BookingPending, models.BookingConfirmed, models.BookingCancelled),
			},
		},
	}
}

func salariesSchema() bson.M {
	money := bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"driver_name", "driver_name_ci", "period", "base_cents", "paid"},
			"properties": bson.M{
				"driver_name":    nonBlank,
				"driver_name_ci": nonBlank,
				"period":         bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-(0[1-9]|1[0-2])$"},
				"base_cents":     money,
				"bonus_cents":    money,
				"deduct_cents":   money,
				"paid":           bson.M{"bsonType": "bool"},
			},
		},
	}
}

func incidentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"reference", "category", "severity", "status"},
			"properties": bson.M{
				"reference": nonBlank,
				"category":  enumOf(models.IncidentCategories...),
				"severity":  enumOf(models.SeverityLow, models.SeverityMedium, models.SeverityHigh),
				"status":    enumOf(models.IncidentOpen, models.IncidentResolved),
			},
		},
	}
}

func ordersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"reference", "kind", "recipient", "recipient_ci", "address", "status"},
			"properties": bson.M{
				"reference":    nonBlank,
				"kind":         enumOf(models.OrderDelivery, models.OrderReturn),
				"recipient":    nonBlank,
				"recipient_ci": nonBlank,
				"address":      nonBlank,
				"status":       enumOf(models.OrderStatuses...),
			},
		},
	}
}
