// internal/app/features/coordinator/handler.go
package coordinator

import (
	uierrors "github.com/dalemusser/freightdesk/internal/app/features/errors"
	bookingstore "github.com/dalemusser/freightdesk/internal/app/store/bookings"
	incidentstore "github.com/dalemusser/freightdesk/internal/app/store/incidents"
	orderstore "github.com/dalemusser/freightdesk/internal/app/store/orders"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the coordinator area: incident reports and a read-only
// view of bookings.
type Handler struct {
	Incidents *incidentstore.Store
	Bookings  *bookingstore.Store
	Orders    *orderstore.Store
	Audit     *auditlog.Logger
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Incidents: incidentstore.New(db),
		Bookings:  bookingstore.New(db),
		Orders:    orderstore.New(db),
		Audit:     auditLog,
		ErrLog:    errLog,
		Log:       logger,
	}
}
