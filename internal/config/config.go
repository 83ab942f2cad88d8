package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSigningSecret aborts startup; tokens cannot be issued or verified without it.
var ErrMissingSigningSecret = errors.New("TOKEN_SIGNING_SECRET is required")

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string
	DatabaseURL    string
	RedisURL       string

	TokenSigningSecret string
	// TokenTTL of zero issues tokens without an expiry.
	TokenTTL    time.Duration
	TokenIssuer string

	CookieDomain string
	CookieSecure bool
	CookieMaxAge time.Duration

	BcryptCost       int
	StoreTimeout     time.Duration
	IdentityCacheTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	environment := getEnv("ENVIRONMENT", "production")

	tokenTTL, err := getDurationEnv("TOKEN_TTL", 0)
	if err != nil {
		return nil, err
	}
	cookieMaxAge, err := getDurationEnv("COOKIE_MAX_AGE", tokenTTL)
	if err != nil {
		return nil, err
	}
	storeTimeout, err := getDurationEnv("STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDurationEnv("IDENTITY_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cookieSecure, err := getBoolEnv("COOKIE_SECURE", environment == "production")
	if err != nil {
		return nil, err
	}
	bcryptCost, err := getIntEnv("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", getEnv("CORS_ORIGIN", "http://localhost:5173"))),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Environment:        environment,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		TokenSigningSecret: os.Getenv("TOKEN_SIGNING_SECRET"),
		TokenTTL:           tokenTTL,
		TokenIssuer:        getEnv("TOKEN_ISSUER", "marketplace-api"),
		CookieDomain:       getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:       cookieSecure,
		CookieMaxAge:       cookieMaxAge,
		BcryptCost:         bcryptCost,
		StoreTimeout:       storeTimeout,
		IdentityCacheTTL:   cacheTTL,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration the process cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TokenSigningSecret) == "" {
		return ErrMissingSigningSecret
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("TOKEN_TTL must not be negative, got %s", c.TokenTTL)
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %q", key, value)
	}
	return parsed, nil
}

func getIntEnv(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", key, value)
	}
	return parsed, nil
}

// getDurationEnv accepts Go durations ("24h") or bare seconds ("3600").
// "none" and "0" both mean zero.
func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	switch value {
	case "":
		return fallback, nil
	case "none", "0":
		return 0, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
