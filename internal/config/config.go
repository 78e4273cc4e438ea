package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Port        string
	DBPath      string
	CORSOrigins string

	PSABaseURL     string
	PSAAPIKey      string
	PSAMinInterval time.Duration

	TCGBaseURL     string
	TCGAPIKey      string
	TCGMinInterval time.Duration

	MetricsRefreshInterval time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// fine; OS environment variables and defaults cover everything.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println(".env file loaded")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "./card_pos.db"),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		PSABaseURL:     getEnv("PSA_API_URL", "https://api.psacard.com/publicapi"),
		PSAAPIKey:      getEnv("PSA_API_KEY", ""),
		PSAMinInterval: getDurationMS("PSA_MIN_INTERVAL_MS", 250),

		TCGBaseURL:     getEnv("TCG_API_URL", "https://api.tcgplayer-proxy.local/v1"),
		TCGAPIKey:      getEnv("TCG_API_KEY", ""),
		TCGMinInterval: getDurationMS("TCG_MIN_INTERVAL_MS", 100),

		MetricsRefreshInterval: getDurationMS("METRICS_REFRESH_MS", 60_000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationMS(key string, fallbackMS int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
		log.Printf("Warning: invalid %s=%q, using default %dms", key, v, fallbackMS)
	}
	return time.Duration(fallbackMS) * time.Millisecond
}
