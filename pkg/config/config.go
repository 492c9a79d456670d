package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL        string
	ListingCacheTTL time.Duration

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SenderEmail       string
	SenderDisplayName string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	TokenLifetime time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "465"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	listingTTL, err := strconv.Atoi(getEnv("LISTING_CACHE_TTL_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid LISTING_CACHE_TTL_SECONDS: %w", err)
	}

	tokenLifetime, err := strconv.Atoi(getEnv("TOKEN_LIFETIME_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_LIFETIME_MINUTES: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "eshift"),
		DBPassword: getEnv("DB_PASSWORD", "dev"),
		DBName:     getEnv("DB_NAME", "eshift"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		ListingCacheTTL: time.Duration(listingTTL) * time.Second,

		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          smtpPort,
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASS", ""),
		SenderEmail:       getEnv("SMTP_SENDER", "no-reply@e-shift.example"),
		SenderDisplayName: getEnv("SMTP_SENDER_NAME", "e-Shift"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@e-shift.example"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		TokenLifetime: time.Duration(tokenLifetime) * time.Minute,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
