package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	SessionDuration        time.Duration
	SessionExtendThreshold time.Duration
	AuditLogCapacity       int
	JWTSecret              string
	CSRFSecret             string
	LoginRateLimit         int
	LoginRateWindow        time.Duration
	ExternalCallTimeout    time.Duration

	TTSBaseURL     string
	TTSLanguage    string
	AudioCachePath string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	Debug bool
}

// Load reads configuration from a .env file (if present) and environment variables with sensible defaults
func Load() *Config {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./lessonlab.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", ""),

		SessionDuration:        time.Duration(getEnvInt("AUTH_SESSION_HOURS", 8)) * time.Hour,
		SessionExtendThreshold: time.Duration(getEnvInt("AUTH_EXTEND_THRESHOLD_MINUTES", 60)) * time.Minute,
		AuditLogCapacity:       getEnvInt("AUDIT_LOG_CAPACITY", 100),
		JWTSecret:              getEnv("JWT_SECRET", "lessonlab-dev-secret"),
		CSRFSecret:             getEnv("CSRF_SECRET", "lessonlab-dev-csrf-secret"),
		LoginRateLimit:         getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow:        time.Duration(getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60)) * time.Second,
		ExternalCallTimeout:    time.Duration(getEnvInt("EXTERNAL_CALL_TIMEOUT_SECONDS", 10)) * time.Second,

		TTSBaseURL:     getEnv("TTS_BASE_URL", "https://translate.google.com/translate_tts"),
		TTSLanguage:    getEnv("TTS_LANGUAGE", "en"),
		AudioCachePath: getEnv("AUDIO_CACHE_PATH", "./audio-cache"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Lesson Lab"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),

		Debug: getEnvBool("DEBUG", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads a positive integer environment variable, falling back on parse errors
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

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
