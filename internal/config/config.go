package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	LogLevel zerolog.Level

	// Database: a postgres:// URL selects PostgreSQL, otherwise SQLitePath is used
	DatabaseURL string
	SQLitePath  string

	// Reports
	CurrencySymbol string
	DefaultUserID  int32

	// S3 Storage
	S3 S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// UsePostgres reports whether DATABASE_URL points at a PostgreSQL server
func (c *Config) UsePostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "warn")))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	userID, err := getEnvInt32("DEFAULT_USER_ID", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		LogLevel:       level,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("EXPENSE_TRACKER_DB", "./data/expense_tracker.db"),
		CurrencySymbol: getEnv("EXPENSE_TRACKER_CURRENCY", "$"),
		DefaultUserID:  userID,
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL != "" && !c.UsePostgres() {
		return fmt.Errorf("DATABASE_URL must be a postgres:// URL")
	}
	if !c.UsePostgres() && c.SQLitePath == "" {
		return fmt.Errorf("EXPENSE_TRACKER_DB is required")
	}
	if c.DefaultUserID <= 0 {
		return fmt.Errorf("DEFAULT_USER_ID must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt32(key string, defaultValue int32) (int32, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return int32(n), nil
}
