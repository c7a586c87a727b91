// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/indexes"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/validators"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and checks it answers a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("freightdesk"))
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema applies collection validators and indexes, then makes sure
// the bootstrap admin exists when one is configured.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if appCfg.BootstrapAdminLogin == "" {
		return nil
	}
	return ensureBootstrapAdmin(ctx, deps, appCfg.BootstrapAdminLogin, appCfg.BootstrapAdminPassword, logger)
}

// ensureBootstrapAdmin creates an admin with loginID when no user has it.
// An existing user is left alone, whatever its role.
func ensureBootstrapAdmin(ctx context.Context, deps DBDeps, loginID, password string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByLoginID(ctx, loginID)
	switch {
	case err == nil:
		if existing.Role != authz.RoleAdmin {
			logger.Warn("bootstrap admin login id belongs to a non-admin user; leaving it unchanged",
				zap.String("login_id", loginID), zap.String("role", existing.Role))
		}
		return nil
	case !errors.Is(err, userstore.ErrNotFound):
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	u, err := users.Create(ctx, models.User{
		LoginID:  loginID,
		FullName: "Administrator",
		Role:     authz.RoleAdmin,
	}, password)
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		// Another instance won the race.
		return nil
	}
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logger.Info("created bootstrap admin", zap.String("login_id", u.LoginID))
	return nil
}
