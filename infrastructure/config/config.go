package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// CORS
	EnableCORS     bool
	AllowedOrigins []string

	// AI consensus pipeline
	AIEnabled         bool
	ConsensusStrategy string
	Models            []string // rank order, highest preference first
	DefaultModel      string
	MaxWorkers        int
	ModelTimeout      time.Duration
	ModelBaseURL      string
	ModelAPIKey       string

	// Rate limiting for AI endpoints
	AIRateLimit int // requests per minute per user
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "pagecraft"),

		EnableCORS:     getEnvBool("ENABLE_CORS", true),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),

		AIEnabled:         getEnvBool("AI_ENABLED", true),
		ConsensusStrategy: getEnv("CONSENSUS_STRATEGY", "consensus"),
		Models:            getEnvList("AI_MODELS", []string{"primary"}),
		DefaultModel:      getEnv("AI_DEFAULT_MODEL", ""),
		MaxWorkers:        getEnvInt("AI_MAX_WORKERS", 3),
		ModelTimeout:      getEnvDuration("AI_MODEL_TIMEOUT", 30*time.Second),
		ModelBaseURL:      getEnv("AI_MODEL_BASE_URL", "http://localhost:9090"),
		ModelAPIKey:       getEnv("AI_MODEL_API_KEY", ""),

		AIRateLimit: getEnvInt("AI_RATE_LIMIT", 30),
	}

	if cfg.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.DefaultModel = cfg.Models[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
	}
	if c.AIEnabled {
		if len(c.Models) == 0 {
			return fmt.Errorf("AI_MODELS must list at least one model when AI is enabled")
		}
		if c.ModelBaseURL == "" {
			return fmt.Errorf("AI_MODEL_BASE_URL is required when AI is enabled")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default.
// List order is meaningful for AI_MODELS, where it encodes preference rank.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
