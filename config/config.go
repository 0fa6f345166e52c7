package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	ChatPort string
	AppEnv   string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // overrides the host/user/... fields when set

	JWTKey    string
	SaltRound int

	BlobBackend        string // local or gcs
	MediaRoot          string
	MediaURL           string
	GCSBucket          string
	GCSPublicBaseURL   string
	GCSCredentialsFile string
	GCSEmulatorHost    string

	RedisAddr    string
	RedisChannel string

	OEmbedEndpoint string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	SweepSchedule string
	SweepPrune    bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DBDriver == "sqlite" && AppConfig.DBName == "educa.db" {
		log.Println("Warning: Using default sqlite database file. Update DB_NAME in your environment.")
	}
	return AppConfig
}

// FromEnv builds a Config from the current process environment without
// touching .env files.
func FromEnv() *Config {
	return &Config{
		Port:     getEnv("PORT", "3000"),
		ChatPort: getEnv("CHAT_PORT", "3001"),
		AppEnv:   strings.ToLower(getEnv("APP_ENV", "development")),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "educa.db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		BlobBackend:        strings.ToLower(getEnv("BLOB_BACKEND", "local")),
		MediaRoot:          getEnv("MEDIA_ROOT", "./media"),
		MediaURL:           getEnv("MEDIA_URL", "/media/"),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSPublicBaseURL:   getEnv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		GCSEmulatorHost:    getEnv("GCS_EMULATOR_HOST", ""),

		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisChannel: getEnv("REDIS_CHANNEL", "chat"),

		OEmbedEndpoint: getEnv("OEMBED_ENDPOINT", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "no-reply@educa.local"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Educa"),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 1h"),
		SweepPrune:    getEnvBool("SWEEP_PRUNE", false),
	}
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}
