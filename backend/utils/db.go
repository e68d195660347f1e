package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"onlinecourse/backend/config"
	"onlinecourse/backend/store"
)

// InitDB connects to PostgreSQL and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)

	db, err := store.Open(postgres.Open(dsn), gormlogger.Warn)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
