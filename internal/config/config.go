// Package config reads the service configuration from the environment. A
// .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Config holds the catalog API configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Auth   AuthConfig
}

type ServerConfig struct {
	Port               int
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
	ShutdownTimeout    time.Duration
}

type StoreConfig struct {
	Backend     string
	ProjectID   string
	DatabaseURL string
	// Migrate applies the embedded migrations on startup.
	Migrate bool
}

type AuthConfig struct {
	JWTSecret string
	// AdminPasswordHash is a bcrypt hash. When empty, AdminPassword is hashed
	// at startup.
	AdminPasswordHash string
	AdminPassword     string
	TokenTTL          time.Duration
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnvAsInt("PORT", 8080),
			AllowedOrigins:     getEnvAsList("CORS_ORIGINS", []string{"*"}),
			RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Store: StoreConfig{
			Backend:     GetEnv("STORE_BACKEND", BackendFirestore),
			ProjectID:   GetEnv("PROJECT_ID", ""),
			DatabaseURL: GetEnv("DATABASE_URL", ""),
			Migrate:     getEnvAsBool("DATABASE_MIGRATE", true),
		},
		Auth: AuthConfig{
			JWTSecret:         GetEnv("JWT_SECRET", ""),
			AdminPasswordHash: GetEnv("ADMIN_PASSWORD_HASH", ""),
			AdminPassword:     GetEnv("ADMIN_PASSWORD", ""),
			TokenTTL:          getEnvAsDuration("TOKEN_TTL", 12*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendFirestore:
		if c.Store.ProjectID == "" {
			errs = append(errs, errors.New("PROJECT_ID is required for the firestore backend"))
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.AdminPasswordHash == "" && c.Auth.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Server.Port))
	}
	if c.Server.RateLimitPerSecond <= 0 || c.Server.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}

	return errors.Join(errs...)
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
