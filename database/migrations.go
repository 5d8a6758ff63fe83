package database

import (
	"fmt"
	"log"

	"patchbay/models"
)

func Migrate() {
	err := DB.AutoMigrate(
		&models.AgentSession{},
		&models.Preview{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	fmt.Println("Migrations completed")
}
