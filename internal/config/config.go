package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CRM      CRMConfig
	Storage  StorageConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	PoolMin     int
	PoolMax     int
	AutoMigrate bool
}

// CRMConfig holds the CRM API credentials and client tuning.
type CRMConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenURL           string
	APIURL             string
	PageSize           int
	Timeout            time.Duration
	RateLimit          float64
	RateBurst          int
	BreakerMaxFailures int
}

// StorageConfig holds the object storage bucket configuration.
type StorageConfig struct {
	BucketName      string
	CredentialsFile string
	PublicBaseURL   string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// MaxPageSize is the largest page the CRM query API accepts.
const MaxPageSize = 2000

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "6000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "crmsync")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("CRM_TOKEN_URL", "https://accounts.zoho.com/oauth/v2/token")
	v.SetDefault("CRM_API_URL", "https://www.zohoapis.com/crm/v2")
	v.SetDefault("CRM_PAGE_SIZE", 200)
	v.SetDefault("CRM_TIMEOUT", "0s")
	v.SetDefault("CRM_RATE_LIMIT", 10.0)
	v.SetDefault("CRM_RATE_BURST", 5)
	v.SetDefault("CRM_BREAKER_MAX_FAILURES", 5)
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			PoolMin:     v.GetInt("DB_POOL_MIN"),
			PoolMax:     v.GetInt("DB_POOL_MAX"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		CRM: CRMConfig{
			ClientID:           v.GetString("CRM_CLIENT_ID"),
			ClientSecret:       v.GetString("CRM_CLIENT_SECRET"),
			RefreshToken:       v.GetString("CRM_REFRESH_TOKEN"),
			TokenURL:           v.GetString("CRM_TOKEN_URL"),
			APIURL:             strings.TrimRight(v.GetString("CRM_API_URL"), "/"),
			PageSize:           v.GetInt("CRM_PAGE_SIZE"),
			Timeout:            v.GetDuration("CRM_TIMEOUT"),
			RateLimit:          v.GetFloat64("CRM_RATE_LIMIT"),
			RateBurst:          v.GetInt("CRM_RATE_BURST"),
			BreakerMaxFailures: v.GetInt("CRM_BREAKER_MAX_FAILURES"),
		},
		Storage: StorageConfig{
			BucketName:      v.GetString("GCS_BUCKET_NAME"),
			CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			PublicBaseURL:   strings.TrimRight(v.GetString("GCS_PUBLIC_BASE_URL"), "/"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CRM config
	if c.CRM.ClientID == "" {
		return fmt.Errorf("CRM_CLIENT_ID is required")
	}
	if c.CRM.ClientSecret == "" {
		return fmt.Errorf("CRM_CLIENT_SECRET is required")
	}
	if c.CRM.RefreshToken == "" {
		return fmt.Errorf("CRM_REFRESH_TOKEN is required")
	}
	if c.CRM.TokenURL == "" {
		return fmt.Errorf("CRM_TOKEN_URL is required")
	}
	if c.CRM.APIURL == "" {
		return fmt.Errorf("CRM_API_URL is required")
	}
	if c.CRM.PageSize < 1 || c.CRM.PageSize > MaxPageSize {
		return fmt.Errorf("CRM_PAGE_SIZE must be between 1 and %d", MaxPageSize)
	}
	if c.CRM.Timeout < 0 {
		return fmt.Errorf("CRM_TIMEOUT must be non-negative")
	}
	if c.CRM.RateLimit <= 0 {
		return fmt.Errorf("CRM_RATE_LIMIT must be positive")
	}
	if c.CRM.RateBurst < 1 {
		return fmt.Errorf("CRM_RATE_BURST must be at least 1")
	}
	if c.CRM.BreakerMaxFailures < 1 {
		return fmt.Errorf("CRM_BREAKER_MAX_FAILURES must be at least 1")
	}

	// Validate storage config
	if c.Storage.BucketName == "" {
		return fmt.Errorf("GCS_BUCKET_NAME is required")
	}
	if c.Storage.PublicBaseURL == "" {
		return fmt.Errorf("GCS_PUBLIC_BASE_URL is required")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
