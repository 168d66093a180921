package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI (optional; everything degrades to fallbacks without it)
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// Admin passcode. The hash variant wins when both are set.
	AdminPasscode     string
	AdminPasscodeHash string

	// Offline cache
	StoragePath string

	// Media host catalog endpoint (optional)
	CatalogURL string

	// Feed rotation
	RotationIntervalSeconds int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                    getEnvOrDefault("PORT", "8080"),
		Env:                     getEnvOrDefault("ENV", "development"),
		DatabaseURL:             mustGetEnv("DATABASE_URL"),
		RedisURL:                mustGetEnv("REDIS_URL"),
		JWTSecret:               mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:            getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiConcurrentReqs:    getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		AdminPasscode:           getEnvOrDefault("ADMIN_PASSCODE", ""),
		AdminPasscodeHash:       getEnvOrDefault("ADMIN_PASSCODE_HASH", ""),
		StoragePath:             getEnvOrDefault("STORAGE_PATH", "./offline-cache"),
		CatalogURL:              getEnvOrDefault("CATALOG_URL", ""),
		RotationIntervalSeconds: getEnvAsIntOrDefault("ROTATION_INTERVAL_SECONDS", 15),
		FrontendURL:             getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
