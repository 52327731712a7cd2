package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/partyquest/partyquest/pkg/partyquest/admin"
	"github.com/partyquest/partyquest/pkg/partyquest/auth"
	"github.com/partyquest/partyquest/pkg/partyquest/config"
	"github.com/partyquest/partyquest/pkg/partyquest/database"
	"github.com/partyquest/partyquest/pkg/partyquest/models"
	"github.com/partyquest/partyquest/pkg/partyquest/parties"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/partyquest/partyquest/api/swagger"
)

// @title PartyQuest API
// @version 1.0
// @description Party creation, search, and membership lifecycle: apply, accept, withdraw, reapply.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// .env is optional; the environment wins either way
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DBPath); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	// Create default admin user if no admin exists
	if err := ensureAdminExists(); err != nil {
		logger.Fatal("Failed to ensure admin user exists", zap.Error(err))
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "partyquest",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Party routes (protected)
		partiesHandler := parties.NewHandler(database.GetDB())
		partiesGroup := api.Group("/parties")
		partiesGroup.Use(auth.AuthMiddleware())
		partiesHandler.RegisterRoutes(partiesGroup)
		partiesHandler.RegisterMemberRoutes(partiesGroup)

		// Admin routes (admin role required)
		adminHandler := admin.NewHandler(database.GetDB())
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.AuthMiddleware(), auth.RequireAdmin())
		adminHandler.RegisterRoutes(adminGroup)
	}

	logger.Info("Starting PartyQuest server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// ensureAdminExists creates a default admin user if no admin exists in the
// database.
func ensureAdminExists() error {
	db := database.GetDB()

	// Check if any admin user exists
	var count int64
	if err := db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil // Admin already exists
	}

	// Create default admin user
	hashedPassword, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	adminUser := models.User{
		Nickname:     "admin",
		Email:        "admin@partyquest.local",
		PasswordHash: hashedPassword,
		SystemRole:   models.SystemRoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	zap.L().Info("Created default admin user",
		zap.String("email", adminUser.Email),
		zap.String("password", "changeme"))
	return nil
}
