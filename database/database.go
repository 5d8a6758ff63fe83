package database

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"patchbay/config"
)

var DB *gorm.DB

// Connect opens the durable store: postgres when DB_HOST is configured,
// otherwise the embedded sqlite file. The store layer does not care which.
func Connect(cfg *config.Config) {
	var dialector gorm.Dialector
	if cfg.DBHost != "" {
		dialector = postgres.Open(cfg.DSN())
	} else {
		dialector = sqlite.Open(cfg.DBPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	DB = db

	if cfg.DBHost != "" {
		fmt.Printf("Database connected: postgres %s/%s\n", cfg.DBHost, cfg.DBName)
	} else {
		fmt.Printf("Database connected: sqlite %s\n", cfg.DBPath)
	}
}
