package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// DatabaseConfig locates the contact store.
type DatabaseConfig struct {
	URL        string
	RetryDelay time.Duration
}

// AuthConfig holds the operator account and token settings.
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminEmail        string
	AdminPasswordHash string
}

// IngestConfig drives the scheduled ingestion passes.
type IngestConfig struct {
	SourcesPath     string
	Schedule        string
	RunOnStart      bool
	LivenessTimeout time.Duration
}

// BrowserConfig configures the headless browser used for extraction.
type BrowserConfig struct {
	Headless            bool
	UserAgent           string
	ExecPath            string
	PageLoadTimeout     time.Duration
	FallbackLoadTimeout time.Duration
	SettleDelay         time.Duration
	PhoneRegion         string
}

// SearchConfig tunes candidate retrieval and fuzzy filtering.
type SearchConfig struct {
	CandidateLimit int
	FuzzyThreshold float64
}

// Config aggregates application-wide configuration values.
type Config struct {
	AppMode      string
	Port         string
	RateLimitAPI RateLimitConfig
	Database     DatabaseConfig
	Auth         AuthConfig
	Ingest       IngestConfig
	Browser      BrowserConfig
	Search       SearchConfig
}

// Production reports whether APP_MODE selects production behaviour.
func (c *Config) Production() bool {
	return strings.EqualFold(c.AppMode, "production")
}

// Load reads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		AppMode: getEnv("APP_MODE", "development"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			URL:        os.Getenv("DATABASE_URL"),
			RetryDelay: parseDuration(getEnv("DB_RETRY_DELAY", ""), 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
			TokenTTL:          parseDuration(getEnv("JWT_TTL", ""), 24*time.Hour),
			AdminEmail:        os.Getenv("ADMIN_EMAIL"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Ingest: IngestConfig{
			SourcesPath:     getEnv("SOURCES_PATH", "assets/sample-websites-company-names.csv"),
			Schedule:        getEnv("INGEST_SCHEDULE", "0 0 1 * *"),
			RunOnStart:      parseBool(getEnv("INGEST_ON_START", ""), true),
			LivenessTimeout: parseDuration(getEnv("LIVENESS_TIMEOUT", ""), 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:            parseBool(getEnv("BROWSER_HEADLESS", ""), true),
			UserAgent:           os.Getenv("BROWSER_USER_AGENT"),
			ExecPath:            os.Getenv("BROWSER_EXEC_PATH"),
			PageLoadTimeout:     parseDuration(getEnv("PAGE_LOAD_TIMEOUT", ""), 30*time.Second),
			FallbackLoadTimeout: parseDuration(getEnv("FALLBACK_LOAD_TIMEOUT", ""), 15*time.Second),
			SettleDelay:         parseDuration(getEnv("SETTLE_DELAY", ""), 3*time.Second),
			PhoneRegion:         strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "US")),
		},
		Search: SearchConfig{
			CandidateLimit: parseInt(getEnv("SEARCH_CANDIDATE_LIMIT", ""), 200),
			FuzzyThreshold: parseFloat(getEnv("FUZZY_THRESHOLD", ""), 0.4),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_API", "1000/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_API value: %w", err)
	}
	cfg.RateLimitAPI = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(input string, fallback bool) bool {
	b, err := strconv.ParseBool(input)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(input)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(input string, fallback float64) float64 {
	f, err := strconv.ParseFloat(input, 64)
	if err != nil || f <= 0 || f > 1 {
		return fallback
	}
	return f
}
