package config

import (
	"fmt"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

type DatabaseConfig struct {
	// Enabled selects the Postgres repository; when false an
	// in-memory repository is used instead.
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type ImportConfig struct {
	// BatchSize controls how many parsed transactions are persisted per batch.
	BatchSize int
	// DefaultCurrency is used when a statement carries no recognizable currency.
	DefaultCurrency string
	// ArchiveDir receives processed statement files in watch mode.
	ArchiveDir string
	// WatchSchedule is the cron expression for watch-directory scans.
	WatchSchedule string
}

type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("POSTGRES_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "statements"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Import: ImportConfig{
			BatchSize:       getEnvAsInt("IMPORT_BATCH_SIZE", 50),
			DefaultCurrency: getEnv("IMPORT_DEFAULT_CURRENCY", "RUB"),
			ArchiveDir:      getEnv("IMPORT_ARCHIVE_DIR", "archive"),
			WatchSchedule:   getEnv("IMPORT_WATCH_SCHEDULE", "* * * * *"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Import.BatchSize <= 0 {
		return nil, fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", cfg.Import.BatchSize)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
