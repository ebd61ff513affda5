package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/migrations"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/internal/services"
	"storefront/internal/storage"
	"storefront/pkg/gemini"
	"storefront/pkg/mailer"
	"storefront/pkg/qrpay"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Outbound clients
	var gateway services.PaymentGateway
	if cfg.PaymentClientID != "" {
		gateway = qrpay.NewClient(cfg.PaymentAPIURL, cfg.PaymentClientID, cfg.PaymentAPIKey, cfg.PaymentChecksumKey)
	} else {
		log.Println("Warning: PAYMENT_CLIENT_ID not set, online banking is disabled")
	}

	var mail services.Mailer
	if cfg.SMTPUsername != "" {
		mail = mailer.NewClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		log.Println("Warning: SMTP_USERNAME not set, emails will not be sent")
	}

	var generator services.Generator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, "")
		if err != nil {
			log.Fatal("Failed to create Gemini client:", err)
		}
		generator = geminiClient
	} else {
		log.Println("Warning: GEMINI_API_KEY not set, the chat assistant is disabled")
	}
	blobs := storage.NewFSStore(cfg.UploadsDir, cfg.PublicBaseURL)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	promptRepo := repository.NewPromptCategoryRepository(db)

	// Initialize services
	tokens := services.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenTTL)*time.Hour)
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	notifier := services.NewNotificationService(mail)
	userService := services.NewUserService(userRepo, tokens)
	categoryService := services.NewCategoryService(categoryRepo)
	productService := services.NewProductService(productRepo, categoryRepo, redisClient, blobs, cacheTTL)
	cartService := services.NewCartService(cartRepo)
	voucherService := services.NewVoucherService(voucherRepo, userRepo)
	paymentService := services.NewPaymentService(gateway, paymentRepo, orderRepo, subscriptionRepo, userRepo, notifier, cfg.PaymentReturnURL, cfg.PaymentCancelURL)
	orderService := services.NewOrderService(orderRepo, cartRepo, userRepo, productRepo, voucherService, paymentService, notifier)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, paymentService, notifier)
	reviewService := services.NewReviewService(reviewRepo, productRepo, orderRepo, redisClient)
	promptService := services.NewPromptCategoryService(promptRepo)
	chatService := services.NewChatService(redisClient, generator, promptRepo, productRepo, time.Duration(cfg.ChatSessionTTL)*time.Second)

	enforcer, err := middleware.NewEnforcer()
	if err != nil {
		log.Fatal("Failed to build authorization policy:", err)
	}

	router := setupRouter(routeDeps{
		tokens:         tokens,
		enforcer:       enforcer,
		uploadsDir:     cfg.UploadsDir,
		user:           handlers.NewUserHandler(userService),
		category:       handlers.NewCategoryHandler(categoryService),
		product:        handlers.NewProductHandler(productService),
		cart:           handlers.NewCartHandler(cartService),
		order:          handlers.NewOrderHandler(orderService, paymentService),
		subscription:   handlers.NewSubscriptionHandler(subscriptionService),
		voucher:        handlers.NewVoucherHandler(voucherService, userService),
		review:         handlers.NewReviewHandler(reviewService),
		promptCategory: handlers.NewPromptCategoryHandler(promptService),
		chat:           handlers.NewChatHandler(chatService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}

	<-idleConnsClosed
	log.Println("Server stopped")
}
