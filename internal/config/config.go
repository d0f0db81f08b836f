package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	AppEnv       string
	DatabasePath string

	// KVBackend selects where the local collections live: sqlite, redis or memory.
	KVBackend string
	RedisURL  string

	// APIURL selects remote-store mode when set.
	APIURL     string
	APITimeout time.Duration

	JWTSecret     string
	AdminPassword string

	GeminiAPIKey    string
	GeminiModel     string
	ChatTemperature float64
	ChatTimeout     time.Duration

	RefreshSchedule string
	LogLevel        string
	LogFormat       string
	CORSOrigins     []string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	chatTimeout, err := time.ParseDuration(getEnv("CHAT_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_TIMEOUT: %w", err)
	}
	temperature, err := strconv.ParseFloat(getEnv("CHAT_TEMPERATURE", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_TEMPERATURE: %w", err)
	}
	schedule := getEnv("REFRESH_SCHEDULE", "@every 1m")
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_SCHEDULE: %w", err)
	}

	backend := strings.ToLower(getEnv("KV_BACKEND", "sqlite"))
	switch backend {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("invalid KV_BACKEND %q", backend)
	}

	return &Config{
		ServerPort:      port,
		AppEnv:          getEnv("APP_ENV", "development"),
		DatabasePath:    getEnv("DATABASE_PATH", "./clinique.db"),
		KVBackend:       backend,
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		APIURL:          firstEnv("API_URL", "VITE_API_URL", "REACT_APP_API_URL"),
		APITimeout:      apiTimeout,
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		GeminiAPIKey:    firstEnv("GEMINI_API_KEY", "API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ChatTemperature: temperature,
		ChatTimeout:     chatTimeout,
		RefreshSchedule: schedule,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
