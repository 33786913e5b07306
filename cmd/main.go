package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"feed-mapper-service/internal/clients"
	"feed-mapper-service/internal/config"
	"feed-mapper-service/internal/events"
	"feed-mapper-service/internal/handlers"
	"feed-mapper-service/internal/middleware"
	"feed-mapper-service/internal/repository"
	"feed-mapper-service/internal/services"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/secrets"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Initialize Redis client for attribute-map caching
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize NATS events publisher
	eventsPublisher, err := events.NewPublisher(logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		eventsPublisher = nil
	} else {
		log.Println("✓ NATS events publisher initialized")
	}

	// Initialize repositories
	unitRepo := repository.NewUnitRepository(db)
	feedRepo := repository.NewFeedRepository(db)
	marketRepo := repository.NewMarketRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize services
	unitIndexService := services.NewUnitIndexService(unitRepo)
	attributeMapService := services.NewAttributeMapService(mappingRepo, redisClient, logger)
	automapService := services.NewAutomapService(mappingRepo, feedRepo, marketRepo, attributeMapService, logger)

	concurrency := &services.JobConcurrencyConfig{
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
		OfferWorkers:      cfg.OfferWorkers,
		JobTimeout:        cfg.JobTimeout,
		QueueTimeout:      cfg.QueueTimeout,
	}
	var offerService *services.OfferService
	if eventsPublisher != nil {
		offerService = services.NewOfferService(mappingRepo, marketRepo, attributeMapService, unitIndexService, jobRepo, eventsPublisher, concurrency, logger)
	} else {
		offerService = services.NewOfferService(mappingRepo, marketRepo, attributeMapService, unitIndexService, jobRepo, nil, concurrency, logger)
	}

	// Item import client (optional; translation works without it)
	var importClient clients.ItemImportClient
	if cfg.ImportAPIBaseURL != "" {
		importClient = clients.NewHTTPImportClient(clients.HTTPImportClientConfig{
			BaseURL:        cfg.ImportAPIBaseURL,
			APIKey:         cfg.ImportAPIKey,
			RequestsPerSec: float64(cfg.ImportRateLimit),
		})
		log.Println("✓ Item import client initialized")
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	unitHandler := handlers.NewUnitHandler(unitIndexService, unitRepo)
	mappingHandler := handlers.NewMappingHandler(attributeMapService, automapService, eventsPublisher, logger)
	offerHandler := handlers.NewOfferHandler(offerService, jobRepo)
	importHandler := handlers.NewImportHandler(importClient)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers middleware
	router.Use(middleware.SecurityHeaders())

	// CORS middleware
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{
			"https://*.tesserix.app",
			"http://localhost:3000",
			"http://localhost:3001",
		}
	}
	router.Use(middleware.CORS(origins))

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Protected API routes
	api := router.Group("/api/v1")

	// Authentication middleware using Istio JWT claims
	api.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: false,
		SkipPaths:          []string{"/health", "/ready"},
	}))

	{
		units := api.Group("/units")
		{
			units.GET("/index", unitHandler.GetIndex)
			units.PUT("/conversions", unitHandler.UpsertConversion)
		}

		mappings := api.Group("/mappings")
		{
			mappings.GET("/categories/:id/attribute-map", mappingHandler.GetAttributeMap)
			mappings.DELETE("/categories/:id/attribute-map", mappingHandler.InvalidateAttributeMap)
			mappings.POST("/categories/:id/automap-attributes", mappingHandler.AutomapAttributes)
			mappings.POST("/attributes/:id/automap-values", mappingHandler.AutomapValues)
		}

		feeds := api.Group("/feeds")
		{
			feeds.POST("/:feedId/automap-values", mappingHandler.AutomapFeedValues)
			feeds.POST("/:feedId/translate", offerHandler.TranslateFeed)
			feeds.GET("/:feedId/jobs", offerHandler.ListJobs)
		}

		offers := api.Group("/offers")
		{
			offers.POST("/resolve", offerHandler.ResolveOffers)
			offers.POST("/submit", importHandler.SubmitOffers)
		}

		api.GET("/imports/:taskId", importHandler.GetImportStatus)
		api.GET("/jobs/:id", offerHandler.GetJob)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Feed mapper service starting on port %s (env: %s)", cfg.Port, cfg.Environment)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down feed-mapper-service...")

	if eventsPublisher != nil {
		eventsPublisher.Close()
		log.Println("✓ Events publisher closed")
	}

	log.Println("Feed mapper service stopped")
}
