// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"github.com/meroket/meroket/internal/app/resources"
	userstore "github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to load shared resources (like templates), warm caches, or perform
// any app-wide setup that depends on config and backends.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.AdminEmail != "" {
		if err := promoteAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// promoteAdmin grants the admin role to the configured account. A missing
// account is logged and skipped so a fresh database can still boot.
func promoteAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	u, err := users.GetByEmail(ctx, normalize.Email(email))
	if errors.Is(err, mongo.ErrNoDocuments) {
		logger.Warn("admin_email account not found, skipping promotion",
			zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	if u.Role == models.RoleAdmin {
		return nil
	}
	if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted account to admin", zap.String("email", email))
	return nil
}
