package migrations

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront/internal/models"
	"storefront/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultSystemPrompt = "You are a friendly shopping assistant for our store. " +
	"Recommend products from the catalog provided, answer questions about orders, " +
	"vouchers and subscriptions, and keep answers short."

// RunMigrations creates or updates every table and seeds default data.
func RunMigrations(db *gorm.DB, adminEmail, adminPassword string) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Voucher{},
		&models.UserVoucher{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Subscription{},
		&models.SubscriptionOrder{},
		&models.Payment{},
		&models.Review{},
		&models.PromptCategory{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createDefaultData(db, adminEmail, adminPassword); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

func createDefaultData(db *gorm.DB, adminEmail, adminPassword string) error {
	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	promptRepo := repository.NewPromptCategoryRepository(db)

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		log.Println("Admin user already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := &models.User{
			Name:     "Administrator",
			Email:    adminEmail,
			Password: string(hashedPassword),
			Role:     string(models.Admin),
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		log.Printf("Admin user %s created", adminEmail)
	default:
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	_, err = promptRepo.GetByName(ctx, "Shopping assistant")
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		category := &models.PromptCategory{
			Name:         "Shopping assistant",
			Description:  "General product advice",
			SystemPrompt: defaultSystemPrompt,
		}
		if err := promptRepo.Create(ctx, category); err != nil {
			return fmt.Errorf("failed to create default prompt category: %w", err)
		}
		log.Println("Default prompt category created")
	default:
		return fmt.Errorf("failed to look up prompt category: %w", err)
	}

	return nil
}
