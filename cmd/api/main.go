package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nestegg/internal/config"
	"nestegg/internal/database"
	"nestegg/internal/handlers"
	"nestegg/internal/logger"
	"nestegg/internal/middleware"
	"nestegg/internal/provider"
	"nestegg/internal/refresher"
	"nestegg/internal/services"
	"nestegg/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "nestegg/internal/docs" // Import swagger docs
)

// @title           Nestegg API
// @version         1.0
// @description     Nestegg is a personal finance tracker for holdings across Indian and European markets: stocks, bank accounts, mutual funds, fixed deposits, insurance policies, and commodities, with per-market net worth aggregation.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	assetService := services.NewAssetService(db)
	netWorthService := services.NewNetWorthService(db)
	auditService := services.NewAuditService(db)

	quoteProvider := provider.NewYahooProvider(
		&http.Client{Timeout: 10 * time.Second},
		appConfig.PriceAPIURL,
	)
	priceService := services.NewPriceService(db, quoteProvider, netWorthService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	assetHandler := handlers.NewAssetHandler(assetService, netWorthService, auditService)
	netWorthHandler := handlers.NewNetWorthHandler(netWorthService)
	priceHandler := handlers.NewPriceHandler(priceService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Asset routes
	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetUserAssets)
	assets.GET("/:id", assetHandler.GetAssetByID)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)

	// Net worth routes
	networth := protected.Group("/networth")
	networth.GET("", netWorthHandler.GetNetWorth)
	networth.GET("/snapshots", netWorthHandler.GetSnapshots)

	// Price routes
	prices := protected.Group("/prices")
	prices.POST("/refresh", priceHandler.RefreshPrices)

	// Background price refresh
	if appConfig.RefreshEnabled {
		priceRefresher := refresher.New(priceService, appConfig.RefreshInterval, log)
		if err := priceRefresher.Start(); err != nil {
			return fmt.Errorf("failed to start price refresher: %w", err)
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-quit
			priceRefresher.Stop()
		}()
	}

	log.Infof("Starting Nestegg backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
