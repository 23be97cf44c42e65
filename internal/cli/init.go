// Package cli implements the buste command-line interface and the shared
// initialization used by both binaries.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"buste/internal/amqp"
	"buste/internal/config"
	"buste/internal/log"
	"buste/internal/storage"
)

// SetupLogger initializes structured logging and sets it as the default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes the SQLite repository.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// InitPublisher initializes the AMQP client when an URL is configured.
// Returns nil when AMQP is disabled or unreachable; the caller runs
// SQLite-only in that case.
func InitPublisher(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - envelope events will not be mirrored")
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		return nil
	}
	return client
}
