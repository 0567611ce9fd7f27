package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"referral-wallet/internal/auth"
	"referral-wallet/internal/config"
	"referral-wallet/internal/database"
	"referral-wallet/internal/handlers"
	"referral-wallet/internal/repository"
	"referral-wallet/internal/services"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	repo := repository.NewRepository(db)

	// Initialize services
	referralService := services.NewReferralService(db, cfg.App.PerReferralReward)
	bankService := services.NewBankDetailsService(repo)
	walletService := services.NewWalletService(repo, bankService, cfg.App.PerReferralReward, cfg.App.MinRedeemAmount)
	userService := services.NewUserService(db, referralService)
	payoutService := services.NewPayoutService(db)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, referralService)
	walletHandler := handlers.NewWalletHandler(walletService, bankService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	router.POST("/users/register", userHandler.Register)
	router.POST("/users/login", userHandler.Login)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.GET("/wallet-balance", userHandler.GetWalletBalance)
			userRoutes.GET("/referrals", userHandler.GetReferredUsers)
			userRoutes.GET("/referral-stats", userHandler.GetReferralGoalStats)
		}

		// Wallet / bank details endpoints
		walletRoutes := api.Group("/wallet")
		{
			walletRoutes.GET("/eligibility", walletHandler.GetEligibility)
			walletRoutes.GET("/bank-details", walletHandler.GetBankDetails)
			walletRoutes.POST("/bank-details", walletHandler.SubmitBankDetails)
			walletRoutes.DELETE("/bank-details", walletHandler.DeleteBankDetails)
			walletRoutes.PUT("/redeem-amount", walletHandler.UpdateRedeemAmount)
			walletRoutes.GET("/redeem-history", walletHandler.GetRedeemHistory)
		}

		// Payout endpoints
		api.GET("/payouts", payoutHandler.GetMyPayouts)
	}

	// Admin routes (protected)
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware())
	{
		admin.GET("/bank-details", walletHandler.GetAllBankDetails)
		admin.PUT("/redeem-status/:userId", walletHandler.UpdateRedeemStatus)
		admin.GET("/redeem-history/:userId", walletHandler.GetUserRedeemHistory)

		admin.POST("/payouts", payoutHandler.CreatePayout)
		admin.GET("/payouts/:userId", payoutHandler.GetUserPayouts)
		admin.GET("/payouts-stats", payoutHandler.GetPayoutStats)

		admin.POST("/reward-targets", adminHandler.CreateRewardTarget)
		admin.GET("/reward-targets", adminHandler.GetRewardTargets)
		admin.PUT("/reward-targets/:id", adminHandler.UpdateRewardTarget)
		admin.DELETE("/reward-targets/:id", adminHandler.DeleteRewardTarget)
	}

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
