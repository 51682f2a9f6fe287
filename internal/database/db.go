package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"go-pos-local/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database named by the config and syncs the key-value table.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN is required for the mysql driver")
		}
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("driver %q has no database", cfg.DBDriver)
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}

	var (
		db  *gorm.DB
		err error
	)
	// Wait for the DB to be ready (mysql may still be starting)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(level),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after 5 attempts: %w", err)
	}
	log.Printf("✅ Successfully connected to %s!", cfg.DBDriver)

	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Println("✅ Database Schema Synced!")
	return db, nil
}
