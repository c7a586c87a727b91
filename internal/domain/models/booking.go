// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is a customer pickup request taken by the admin desk.
type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference   string             `bson:"reference" json:"reference"`
	Customer    string             `bson:"customer" json:"customer"`
	CustomerCI  string             `bson:"customer_ci" json:"customer_ci"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Origin      string             `bson:"origin" json:"origin"`
	Destination string             `bson:"destination" json:"destination"`
	PickupDate  time.Time          `bson:"pickup_date" json:"pickup_date"`
	Parcels     int                `bson:"parcels" json:"parcels"`
	Status      string             `bson:"status" json:"status"`

	CreatedByID *primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
