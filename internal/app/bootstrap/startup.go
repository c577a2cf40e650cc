// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin guarantees an administrator account exists for the given
// email. An existing user is promoted in place; a missing one is created
// with the Google auth method so the first sign-in works without a
// password.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleAdministrator {
			return nil
		}
		prev, err := users.UpdateRole(ctx, u.ID, models.RoleAdministrator)
		if err != nil {
			return err
		}
		logger.Info("promoted admin account",
			zap.String("email", email),
			zap.String("previous_role", string(prev)))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		created, err := users.Create(ctx, models.User{
			FullName:   "Administrador",
			Email:      email,
			Role:       models.RoleAdministrator,
			AuthMethod: "google",
		})
		if err != nil {
			// A concurrent startup may have created it; promotion on the
			// next boot resolves any role mismatch.
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				return nil
			}
			return err
		}
		logger.Info("created admin account",
			zap.String("email", email),
			zap.String("user_id", created.ID.Hex()))
		return nil

	default:
		return err
	}
}
