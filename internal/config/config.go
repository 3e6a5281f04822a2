package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string // empty = auth disabled (dev only)
	DevUserID   string // owner used when auth is disabled
	CORSOrigins string
	TablePrefix string
	// Version history
	MaxVersionsPerDocument int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		Environment:            env,
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWKSURL:                getEnv("JWKS_URL", ""),
		DevUserID:              getEnv("DEV_USER_ID", "dev-user"),
		CORSOrigins:            getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:            tablePrefix,
		MaxVersionsPerDocument: getEnvInt("MAX_VERSIONS_PER_DOCUMENT", DefaultMaxVersionsPerDocument),
		// Debug defaults to true outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
