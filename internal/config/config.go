package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"feed-mapper-service/internal/models"
)

// Config holds all configuration for the feed mapper service
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Translation Settings
	MaxConcurrentJobs int
	OfferWorkers      int
	JobTimeout        time.Duration
	QueueTimeout      time.Duration

	// Item Import API
	ImportAPIBaseURL string
	ImportAPIKey     string
	ImportRateLimit  int // requests per second
}

// Load loads configuration from environment variables
func Load() *Config {
	// Build DATABASE_URL from components using GCP Secret Manager for password
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "postgres")
		dbPassword := secrets.GetDBPassword()
		dbName := getEnv("DB_NAME", "tesseract_hub")
		dbSSLMode := getEnv("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)
	}

	config := &Config{
		Port:        getEnv("PORT", "8098"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,

		// Translation Settings
		MaxConcurrentJobs: getEnvAsInt("MAX_CONCURRENT_JOBS", 2),
		OfferWorkers:      getEnvAsInt("OFFER_WORKERS", 8),
		JobTimeout:        getEnvAsDuration("JOB_TIMEOUT", 30*time.Minute),
		QueueTimeout:      getEnvAsDuration("QUEUE_TIMEOUT", 5*time.Minute),

		// Item Import API
		ImportAPIBaseURL: getEnv("IMPORT_API_BASE_URL", ""),
		ImportAPIKey:     getEnv("IMPORT_API_KEY", ""),
		ImportRateLimit:  getEnvAsInt("IMPORT_RATE_LIMIT", 5),
	}

	if config.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	return config
}

// InitDB connects to Postgres and migrates the mapping schema
func InitDB(cfg *Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Feed{},
		&models.FeedCategory{},
		&models.FeedAttribute{},
		&models.FeedAttributeValue{},
		&models.Marketplace{},
		&models.MarketCategory{},
		&models.MarketAttribute{},
		&models.MarketAttributeValue{},
		&models.Unit{},
		&models.UnitConversion{},
		&models.CategoryMapping{},
		&models.AttributeMapping{},
		&models.ValueMapping{},
		&models.MappingSyncState{},
		&models.TranslationJob{},
	); err != nil {
		log.Printf("Warning: Auto-migration failed: %v", err)
		// Don't fail startup, just log the warning
	} else {
		log.Println("✓ Database schema migration completed")
	}

	return db, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
