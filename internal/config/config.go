package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendPGX  = "pgx"
	BackendGORM = "gorm"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL        string
	HTTPPort           string
	StoreBackend       string // pgx or gorm
	GormDialect        string // postgres, mysql or sqlite; only read when StoreBackend is gorm
	RunMigrations      bool
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	LogLevel           string
	LogFormat          string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded, using environment variables only")
	}

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendPGX)),
		GormDialect:        strings.ToLower(getEnv("GORM_DIALECT", "postgres")),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}

	switch cfg.StoreBackend {
	case BackendPGX, BackendGORM:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (expected %s or %s)", cfg.StoreBackend, BackendPGX, BackendGORM)
	}

	switch cfg.GormDialect {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("invalid GORM_DIALECT %q (expected postgres, mysql or sqlite)", cfg.GormDialect)
	}

	migrate, err := strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
	}
	cfg.RunMigrations = migrate

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
