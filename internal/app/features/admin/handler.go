// internal/app/features/admin/handler.go
package admin

import (
	uierrors "github.com/dalemusser/freightdesk/internal/app/features/errors"
	"github.com/dalemusser/freightdesk/internal/app/store/audit"
	bookingstore "github.com/dalemusser/freightdesk/internal/app/store/bookings"
	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin area: dashboard, bookings, user accounts and
// the audit log.
type Handler struct {
	DB       *mongo.Database
	Bookings *bookingstore.Store
	Users    *userstore.Store
	Events   *audit.Store
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Bookings: bookingstore.New(db),
		Users:    userstore.New(db),
		Events:   audit.New(db),
		Audit:    auditLog,
		ErrLog:   errLog,
		Log:      logger,
	}
}
