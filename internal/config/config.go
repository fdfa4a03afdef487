package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the API server.
type Config struct {
	APIPort      int
	RedisURL     string
	NATSURL      string
	JWTSecret    string
	TokenTTL     time.Duration
	SeedPassword string

	// Assistant (LLM) boundary.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Rate limiting.
	RateLimitEnabled    bool
	LoginLimitPerMinute int
	UplinkLimitPerMin   int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		APIPort:      getEnvAsInt("API_PORT", 3000),
		RedisURL:     getEnv("REDIS_URL", "localhost:6379"),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		JWTSecret:    getEnv("JWT_SECRET", "opensite-secret-key-change-in-production"),
		TokenTTL:     time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		SeedPassword: getEnv("SEED_PASSWORD", "opensite123"),

		LLMBaseURL: getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout: time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,

		RateLimitEnabled:    getEnvAsBool("RATE_LIMIT_ENABLED", true),
		LoginLimitPerMinute: getEnvAsInt("RATE_LIMIT_LOGIN_LIMIT", 5),
		UplinkLimitPerMin:   getEnvAsInt("RATE_LIMIT_UPLINK_LIMIT", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
