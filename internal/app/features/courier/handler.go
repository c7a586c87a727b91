// internal/app/features/courier/handler.go
package courier

import (
	uierrors "github.com/dalemusser/freightdesk/internal/app/features/errors"
	orderstore "github.com/dalemusser/freightdesk/internal/app/store/orders"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the courier area: open deliveries and returns.
type Handler struct {
	Orders *orderstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Orders: orderstore.New(db),
		ErrLog: errLog,
		Log:    logger,
	}
}
