// roster-crm/config/database.go

package config

import (
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDB opens the Postgres mirror. Without DB_URL the mirror is disabled
// and DB stays nil.
func ConnectDB(cfg *Config) *gorm.DB {
	if cfg.DBURL == "" {
		slog.Warn("DB_URL is not set, Postgres mirror is disabled")
		return nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		slog.Error("Failed to connect to Postgres, mirror is disabled", "error", err)
		return nil
	}

	DB = db
	slog.Info("Connected to Postgres")
	return DB
}
