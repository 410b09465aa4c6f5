package migrate

import (
	"context"
	"fmt"

	"github.com/nyudevops/shopcarts/pkg/config"
	"github.com/nyudevops/shopcarts/pkg/db"
	"github.com/nyudevops/shopcarts/pkg/logger"
)

// MaybeRun applies the bundled migrations on boot when AUTO_MIGRATE is set.
// SQLite databases are always migrated since they are typically ephemeral.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.DB.AutoMigrate && !cfg.DB.IsSQLite() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, Source{Dialect: client.Dialect()}, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
