package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL      PostgreSQLConfig
	Redis           RedisConfig
	Server          ServerConfig
	ApplicationsAPI ApplicationsAPIConfig
	Scoring         ScoringConfig
	Session         SessionConfig
	Logging         LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds the snapshot cache configuration
type RedisConfig struct {
	Enabled     bool
	Address     string
	Password    string
	DB          int
	SnapshotTTL time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// ApplicationsAPIConfig points at the backend that owns application state
type ApplicationsAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// ScoringConfig holds compatibility weights and resolution thresholds
type ScoringConfig struct {
	WeightBudget            float64
	WeightCapacity          float64
	WeightPreference        float64
	HighPriorityThreshold   float64
	MediumPriorityThreshold float64
	MinRecommendationScore  float64
	RecommendationLimit     int
}

// SessionConfig controls conflict session lifetime
type SessionConfig struct {
	TTL           time.Duration
	SweepSchedule string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "tink"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Redis: RedisConfig{
			Enabled:     getEnv("REDIS_ADDRESS", "") != "",
			Address:     getEnv("REDIS_ADDRESS", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			SnapshotTTL: getEnvAsDuration("REDIS_SNAPSHOT_TTL", 30*time.Second),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		ApplicationsAPI: ApplicationsAPIConfig{
			BaseURL: getEnv("APPLICATIONS_API_URL", "http://localhost:8000/api"),
			Token:   getEnv("APPLICATIONS_API_TOKEN", ""),
			Timeout: getEnvAsDuration("APPLICATIONS_API_TIMEOUT", 15*time.Second),
		},
		Scoring: ScoringConfig{
			WeightBudget:            getEnvAsFloat("SCORE_WEIGHT_BUDGET", 0.60),
			WeightCapacity:          getEnvAsFloat("SCORE_WEIGHT_CAPACITY", 0.25),
			WeightPreference:        getEnvAsFloat("SCORE_WEIGHT_PREFERENCE", 0.15),
			HighPriorityThreshold:   getEnvAsFloat("PRIORITY_HIGH_THRESHOLD", 80),
			MediumPriorityThreshold: getEnvAsFloat("PRIORITY_MEDIUM_THRESHOLD", 60),
			MinRecommendationScore:  getEnvAsFloat("RECOMMEND_MIN_SCORE", 50),
			RecommendationLimit:     getEnvAsInt("RECOMMEND_LIMIT", 3),
		},
		Session: SessionConfig{
			TTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 1m"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would make the resolver or client misbehave
func (c *Config) Validate() error {
	if c.ApplicationsAPI.BaseURL == "" {
		return errors.New("APPLICATIONS_API_URL is required")
	}
	if c.Scoring.MediumPriorityThreshold > c.Scoring.HighPriorityThreshold {
		return fmt.Errorf("medium priority threshold %.1f exceeds high threshold %.1f",
			c.Scoring.MediumPriorityThreshold, c.Scoring.HighPriorityThreshold)
	}
	if c.Scoring.MinRecommendationScore < 0 || c.Scoring.MinRecommendationScore > 100 {
		return fmt.Errorf("minimum recommendation score %.1f out of range 0-100", c.Scoring.MinRecommendationScore)
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
