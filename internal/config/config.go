package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	SessionDuration time.Duration
	CSRFSecret      string
	StaticFilesPath string
	MigrationsPath  string

	// Database (sqlite by default; postgres/mysql via DATABASE_URL)
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// Gemini content generation; empty API key disables AI enhancement
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	EnhanceTimeout   time.Duration

	// Telemetry
	TelemetryEndpoint      string
	TelemetryFlushInterval time.Duration

	// Email (AWS SES); empty from-address disables email
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	// Parent OAuth providers
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	AppleClientID        string
	AppleClientSecret    string
	OAuthRedirectBaseURL string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		CSRFSecret:      getEnv("CSRF_SECRET", "phonicsquest-dev-secret"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./phonicsquest.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
		EnhanceTimeout:   getDuration("ENHANCE_TIMEOUT", 6*time.Second),

		TelemetryEndpoint:      getEnv("TELEMETRY_ENDPOINT", ""),
		TelemetryFlushInterval: getDuration("TELEMETRY_FLUSH_INTERVAL", 30*time.Second),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Phonics Quest"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		AppleClientSecret:    getEnv("APPLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),

		Debug: getBool("DEBUG", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
