package config

import (
	"errors"
	"time"
)

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment   string
	Addr          string
	DatabaseURL   string
	MigrationsDir string

	// SessionSecret signs session proofs; SessionTTL bounds their lifetime.
	SessionSecret string
	SessionTTL    time.Duration

	// Redis is optional. When configured it backs both session revocation
	// and rate limiting; otherwise in-memory fallbacks are used.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
// DatabaseURL and SessionSecret carry no fallback on purpose: their absence
// is a startup-fatal condition reported by Validate.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:   GetString("APP_ENV", "development"),
		Addr:          GetString("API_ADDR", ":4000"),
		DatabaseURL:   GetString("DATABASE_URL", ""),
		MigrationsDir: GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		SessionSecret: GetString("SESSION_SECRET", ""),
		SessionTTL:    GetDuration("SESSION_TTL", 7*24*time.Hour),
		RedisAddr:     GetString("REDIS_ADDR", ""),
		RedisPassword: GetString("REDIS_PASSWORD", ""),
		RedisDB:       GetInt("REDIS_DB", 0),
	}
}

// Validate reports configuration the API cannot start without.
func (c APIConfig) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	return nil
}
