// internal/app/features/accounting/handler.go
package accounting

import (
	uierrors "github.com/dalemusser/freightdesk/internal/app/features/errors"
	salarystore "github.com/dalemusser/freightdesk/internal/app/store/salaries"
	"github.com/dalemusser/freightdesk/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the accounting area.
type Handler struct {
	Salaries *salarystore.Store
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Salaries: salarystore.New(db),
		Audit:    auditLog,
		ErrLog:   errLog,
		Log:      logger,
	}
}
