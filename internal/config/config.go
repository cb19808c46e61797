package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Groq       GroqConfig
	Scraper    ScraperConfig
	Search     SearchConfig
	PostgreSQL PostgreSQLConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// GroqConfig holds configuration for the Groq (OpenAI-compatible)
// completion API used for fallback extraction and reply generation.
type GroqConfig struct {
	APIKey      string
	APIBase     string
	ChatModel   string
	Temperature float64
	MaxTokens   int
	Timeout     int // seconds
	Enabled     bool
}

// ScraperConfig holds retrieval pipeline configuration
type ScraperConfig struct {
	TotalBudget   int // seconds, whole pipeline
	FastTimeout   int // seconds, static fetch tier
	RenderWait    int // seconds, wait for rendered cards
	MaxListings   int
	UserAgent     string
	ChromePath    string // optional explicit browser binary
	ReuseSessions bool
}

// SearchConfig holds search behavior configuration
type SearchConfig struct {
	BaseURL  string
	Currency string
}

// PostgreSQLConfig holds the optional search-log database configuration.
// The database is skipped entirely when no DSN is set.
type PostgreSQLConfig struct {
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
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
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Groq: GroqConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			APIBase:     getEnv("GROQ_API_BASE", "https://api.groq.com/openai/v1"),
			ChatModel:   getEnv("GROQ_CHAT_MODEL", "llama-3.1-8b-instant"),
			Temperature: getEnvAsFloat("GROQ_TEMPERATURE", 0.7),
			MaxTokens:   getEnvAsInt("GROQ_MAX_TOKENS", 400),
			Timeout:     getEnvAsInt("GROQ_TIMEOUT", 20),
			Enabled:     getEnv("GROQ_API_KEY", "") != "",
		},
		Scraper: ScraperConfig{
			TotalBudget: getEnvAsInt("SCRAPER_TOTAL_BUDGET", 15),
			FastTimeout: getEnvAsInt("SCRAPER_FAST_TIMEOUT", 5),
			RenderWait:  getEnvAsInt("SCRAPER_RENDER_WAIT", 5),
			MaxListings: getEnvAsInt("SCRAPER_MAX_LISTINGS", 3),
			UserAgent: getEnv("SCRAPER_USER_AGENT",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			ChromePath:    getEnv("CHROME_BIN", getEnv("CHROME_PATH", "")),
			ReuseSessions: getEnvAsBool("SCRAPER_REUSE_SESSIONS", true),
		},
		Search: SearchConfig{
			BaseURL:  getEnv("SEARCH_BASE_URL", "https://www.airbnb.com"),
			Currency: getEnv("SEARCH_CURRENCY", "USD"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Scraper.MaxListings < 1 {
		return nil, fmt.Errorf("SCRAPER_MAX_LISTINGS must be at least 1")
	}

	return cfg, nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
