package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// getEnvString gets an environment variable with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first, if present; real environment
// variables take precedence over it.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	config.EndpointAddr = getEnvString("ADDRESS", config.EndpointAddr)
	config.DatabaseDSN = getEnvString("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getEnvString("SECRET_KEY", config.SecretKey)
	config.SessionTokenValidityDuration = getEnvDuration("SESSION_TOKEN_VALIDITY", config.SessionTokenValidityDuration)
	config.SessionCookieName = getEnvString("SESSION_COOKIE_NAME", config.SessionCookieName)
	config.BcryptCost = getEnvInt("BCRYPT_COST", config.BcryptCost)
	config.HashWorkers = getEnvInt("HASH_WORKERS", config.HashWorkers)
	config.StoreTimeout = getEnvDuration("STORE_TIMEOUT", config.StoreTimeout)
}
