package migration

import (
	"github.com/whizlyai/whizly/internal/config"
	dbutil "github.com/whizlyai/whizly/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		log = log.Named("migration")
		if !cfg.DBAutoMigrate {
			log.Info("schema migration disabled")
			return nil
		}

		if conn.Dialector.Name() == dbutil.DialectPostgres {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
			log.Info("postgres migrations applied")
			return nil
		}

		if err := AutoMigrate(conn); err != nil {
			return err
		}
		log.Info("schema auto-migrated", zap.String("db_type", cfg.DBType))
		return nil
	}),
)
