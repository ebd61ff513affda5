package main

import (
	"fmt"
	"log"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/migrations"
)

func main() {
	fmt.Println("Initializing database...")

	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Println("Database initialization completed successfully!")
	fmt.Printf("Admin login: %s\n", cfg.AdminEmail)
}
