// internal/domain/models/salary.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Salary is one driver's pay record for a period. Amounts are in cents.
type Salary struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DriverName   string             `bson:"driver_name" json:"driver_name"`
	DriverNameCI string             `bson:"driver_name_ci" json:"driver_name_ci"`
	Period       string             `bson:"period" json:"period"` // YYYY-MM
	BaseCents    int64              `bson:"base_cents" json:"base_cents"`
	BonusCents   int64              `bson:"bonus_cents" json:"bonus_cents"`
	DeductCents  int64              `bson:"deduct_cents" json:"deduct_cents"`
	Paid         bool               `bson:"paid" json:"paid"`
	PaidAt       *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NetCents is base plus bonus minus deductions.
func (s Salary) NetCents() int64 {
	return s.BaseCents + s.BonusCents - s.DeductCents
}
