// internal/domain/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order kinds.
const (
	OrderDelivery = "delivery"
	OrderReturn   = "return"
)

// Order statuses, in the order a courier moves through them.
const (
	OrderAssigned  = "assigned"
	OrderPickedUp  = "picked_up"
	OrderInTransit = "in_transit"
	OrderDelivered = "delivered"
	OrderFailed    = "failed"
)

// OrderStatuses lists every status a courier may set.
var OrderStatuses = []string{OrderAssigned, OrderPickedUp, OrderInTransit, OrderDelivered, OrderFailed}

// Order is a delivery or a return handled by a courier.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference   string             `bson:"reference" json:"reference"`
	Kind        string             `bson:"kind" json:"kind"`
	Recipient   string             `bson:"recipient" json:"recipient"`
	RecipientCI string             `bson:"recipient_ci" json:"recipient_ci"`
	Address     string             `bson:"address" json:"address"`
	Courier     string             `bson:"courier,omitempty" json:"courier,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Reason      string             `bson:"reason,omitempty" json:"reason,omitempty"` // returns only

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsOpen reports whether the order still needs courier action.
func (o Order) IsOpen() bool {
	return o.Status != OrderDelivered && o.Status != OrderFailed
}
