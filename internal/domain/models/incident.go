// internal/domain/models/incident.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Incident severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Incident statuses.
const (
	IncidentOpen     = "open"
	IncidentResolved = "resolved"
)

// IncidentCategories lists the categories a coordinator may pick.
var IncidentCategories = []string{"damage", "delay", "loss", "accident", "other"}

// Incident is a report filed by a coordinator about a delivery problem.
type Incident struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference      string             `bson:"reference" json:"reference"`
	OrderReference string             `bson:"order_reference,omitempty" json:"order_reference,omitempty"`
	Category       string             `bson:"category" json:"category"`
	Severity       string             `bson:"severity" json:"severity"`
	Description    string             `bson:"description" json:"description"` // sanitized HTML
	Status         string             `bson:"status" json:"status"`           // open | resolved
	ReportedBy     string             `bson:"reported_by" json:"reported_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
