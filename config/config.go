package config

import (
	"os"
	"strconv"
)

// Config struct holds application configuration
// This is a simple way to make config accessible globally.
// A more advanced approach might use dependency injection.
type Config struct {
	JWTSecret string
	RedisURL  string

	// Analysis defaults, overridable per request.
	HorizonDays         int
	MaxAlertsPerProduct int
	CacheTTLSeconds     int
}

// AppConfig holds the application-wide configuration
var AppConfig Config

// Load populates AppConfig from the environment, applying defaults for
// optional settings. JWT_SECRET is required and checked in main.
func Load() {
	AppConfig = Config{
		JWTSecret:           os.Getenv("JWT_SECRET"),
		RedisURL:            os.Getenv("REDIS_URL"),
		HorizonDays:         envInt("ANALYSIS_HORIZON_DAYS", 30),
		MaxAlertsPerProduct: envInt("MAX_ALERTS_PER_PRODUCT", 3),
		CacheTTLSeconds:     envInt("FORECAST_CACHE_TTL_SECONDS", 300),
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
