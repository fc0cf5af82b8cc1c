package app

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer       string // Optional: issuer claim for tokens (default: campus-identity)
	DatabaseFile string // Optional: path to SQLite database file (default: ./campus.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	NumKeys      int    // Optional: number of signing keys to generate (default: 3, min: 1, max: 10)

	SessionTTL time.Duration // Optional: session token lifetime (default: 1h)
	PendingTTL time.Duration // Optional: second factor pending token lifetime (default: 5m)

	ProvisionRetryAttempts int           // Optional: identity write attempts on approval (default: 3)
	ProvisionRetryBackoff  time.Duration // Optional: pause between attempts (default: 250ms)

	RedisAddr     string // Optional: enables the Redis stream notifier when set
	RedisPassword string // Optional
	NotifyStream  string // Optional: stream name (default: campus:notifications)
	NotifyBuffer  int    // Optional: async notification buffer (default: 256)

	HousekeepingSchedule string // Optional: cron spec for housekeeping (default: @every 15m)

	BootstrapAdminEmail    string // Optional: super admin created on first start
	BootstrapAdminPassword string // Optional: required with BootstrapAdminEmail

	Env                 string        // Environment (dev, test, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory when one exists. Variables already set win over the file.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	return Config{
		Issuer:       getEnvOrDefault("CAMPUS_ISSUER", "campus-identity"),
		DatabaseFile: getEnvOrDefault("CAMPUS_DATABASE_FILE", "campus.db"),
		PepperFile:   getEnvOrDefault("CAMPUS_PEPPER_FILE", "pepper"),
		NumKeys:      getEnvIntOrDefault("CAMPUS_NUM_KEYS", 3),

		SessionTTL: getEnvDurationOrDefault("SESSION_TTL", time.Hour),
		PendingTTL: getEnvDurationOrDefault("PENDING_TOKEN_TTL", 5*time.Minute),

		ProvisionRetryAttempts: getEnvIntOrDefault("PROVISION_RETRY_ATTEMPTS", 3),
		ProvisionRetryBackoff:  getEnvDurationOrDefault("PROVISION_RETRY_BACKOFF", 250*time.Millisecond),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		NotifyStream:  getEnvOrDefault("NOTIFY_STREAM", "campus:notifications"),
		NotifyBuffer:  getEnvIntOrDefault("NOTIFY_BUFFER", 256),

		HousekeepingSchedule: getEnvOrDefault("HOUSEKEEPING_SCHEDULE", "@every 15m"),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Production reports whether one-time codes must stay out of responses.
func (c Config) Production() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}
