package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	Environment string // "release" hides upstream error detail in responses

	// Postgres
	DatabaseURL string

	// Identity provider. Exactly one verification mode is used:
	// a remote verify endpoint if configured, otherwise local
	// verification with the provider's shared JWT secret.
	IdentityProviderURL string
	IdentityJwtSecret   string
	IdentityTimeout     time.Duration

	// Server
	ApiPort string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseURL       string

	// Image uploads
	ImageMaxSizeMB      int
	ImageMaxDimension   int
	MaxImagesPerRequest int
}

// Load configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.Environment = getEnv("APP_ENV", "debug")

	cfg.DatabaseURL, err = getRequiredEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}

	cfg.IdentityProviderURL = getEnv("IDENTITY_PROVIDER_URL", "")
	cfg.IdentityJwtSecret = getEnv("IDENTITY_JWT_SECRET", "")
	if cfg.IdentityProviderURL == "" && cfg.IdentityJwtSecret == "" {
		return nil, fmt.Errorf("either IDENTITY_PROVIDER_URL or IDENTITY_JWT_SECRET must be set")
	}

	identityTimeoutSeconds, err := strconv.ParseInt(getEnv("IDENTITY_TIMEOUT_SECONDS", "5"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid IDENTITY_TIMEOUT_SECONDS: %w", err)
	}
	cfg.IdentityTimeout = time.Duration(identityTimeoutSeconds) * time.Second

	cfg.ApiPort = getEnv("API_PORT", "8080")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseURL = getEnv("IMAGE_BASE_URL", "")

	cfg.ImageMaxSizeMB, err = strconv.Atoi(getEnv("IMAGE_MAX_SIZE_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_SIZE_MB: %w", err)
	}

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.MaxImagesPerRequest, err = strconv.Atoi(getEnv("MAX_IMAGES_PER_REQUEST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_IMAGES_PER_REQUEST: %w", err)
	}

	return cfg, nil
}
