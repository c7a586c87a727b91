// Package refs builds the human-facing references printed on bookings,
// incidents and orders, e.g. BK-20260918-3F9A1C2E.
package refs

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reference prefixes.
const (
	Booking  = "BK"
	Incident = "INC"
	Order    = "ORD"
)

// New returns prefix-YYYYMMDD-XXXXXXXX using the UTC date of at and the
// first eight hex digits of a random UUID.
func New(prefix string, at time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return prefix + "-" + at.UTC().Format("20060102") + "-" + id
}
