package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Booking behavior
	ConflictWindow time.Duration

	// Session hand-off polling
	HandoffPollInterval time.Duration
	HandoffPollTimeout  time.Duration

	// Reminders
	ReminderLeadTime     time.Duration
	ReminderPollInterval time.Duration

	// Auth
	AuthJWTSecret string

	// CORS
	CORSAllowedOrigins string

	// SendGrid email notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ConflictWindow: getEnvAsDuration("BOOKING_CONFLICT_WINDOW", 30*time.Minute),

		HandoffPollInterval: getEnvAsDuration("HANDOFF_POLL_INTERVAL", 500*time.Millisecond),
		HandoffPollTimeout:  getEnvAsDuration("HANDOFF_POLL_TIMEOUT", 10*time.Second),

		ReminderLeadTime:     getEnvAsDuration("REMINDER_LEAD_TIME", time.Hour),
		ReminderPollInterval: getEnvAsDuration("REMINDER_POLL_INTERVAL", time.Minute),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Telecare"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
