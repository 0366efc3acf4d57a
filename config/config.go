package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	TelegramToken string
	AdminUsername string

	OLXBaseURL    string
	SearchLimit   int
	HTTPTimeoutMs int
	UserAgent     string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	AdminPageSize   int
	MaxSavedQueries int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "yakattabekov"),

		OLXBaseURL:    getEnv("OLX_BASE_URL", "https://www.olx.kz"),
		SearchLimit:   getEnvInt("SEARCH_LIMIT", 6),
		HTTPTimeoutMs: getEnvInt("HTTP_TIMEOUT_MS", 12000),
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
				"(KHTML, like Gecko) Chrome/120 Safari/537.36"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),

		AdminPageSize:   getEnvInt("ADMIN_PAGE_SIZE", 5),
		MaxSavedQueries: getEnvInt("MAX_SAVED_QUERIES", 2000),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
