package migration

import (
	"github.com/smallbiznis/placements/internal/config"
	"github.com/smallbiznis/placements/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module applies the SQL migrations when the gorm store runs on postgres.
// Other dialects are migrated by the store itself.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !db.IsPostgres(cfg) {
			return nil
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("database migrations applied")
		return nil
	}),
)
