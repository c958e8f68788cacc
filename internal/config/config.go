package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort  int
	Environment string
	LogLevel    string

	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string

	SessionSecret  string
	SessionTTL     time.Duration
	SessionBackend string // "sql" or "redis"

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string
}

// IsProduction reports whether the app runs with production settings (secure cookies etc).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from environment variables (and an optional .env file) or sets defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "./crm.db")
	v.SetDefault("SESSION_TTL_MINUTES", 1440)
	v.SetDefault("SESSION_BACKEND", "sql")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8080")

	port := v.GetInt("PORT")
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", v.GetString("PORT"))
	}

	cfg := &Config{
		ServerPort:     port,
		Environment:    v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTTL:     time.Duration(v.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
		SessionBackend: strings.ToLower(v.GetString("SESSION_BACKEND")),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	switch cfg.SessionBackend {
	case "sql", "redis":
	default:
		return nil, fmt.Errorf("unsupported SESSION_BACKEND %q", cfg.SessionBackend)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = "insecure-development-secret"
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
