package config

import (
	"os"
	"testing"
	"time"
)

// setRequiredEnv sets the variables that have no defaults.
func setRequiredEnv() {
	os.Setenv("DB_PASSWORD", "testpass")
	os.Setenv("CRM_CLIENT_ID", "client-id")
	os.Setenv("CRM_CLIENT_SECRET", "client-secret")
	os.Setenv("CRM_REFRESH_TOKEN", "refresh-token")
	os.Setenv("GCS_BUCKET_NAME", "crm-files")
}

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars()
	setRequiredEnv()
	defer clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "6000" {
		t.Errorf("Expected port 6000, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", cfg.Database.Host)
	}
	if cfg.Database.Name != "crmsync" {
		t.Errorf("Expected db name crmsync, got %s", cfg.Database.Name)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Expected sslmode disable, got %s", cfg.Database.SSLMode)
	}
	if cfg.Database.AutoMigrate {
		t.Error("Expected auto migrate to be off by default")
	}
	if cfg.CRM.PageSize != 200 {
		t.Errorf("Expected page size 200, got %d", cfg.CRM.PageSize)
	}
	if cfg.CRM.Timeout != 0 {
		t.Errorf("Expected no CRM timeout, got %s", cfg.CRM.Timeout)
	}
	if cfg.CRM.APIURL != "https://www.zohoapis.com/crm/v2" {
		t.Errorf("Unexpected CRM API URL %s", cfg.CRM.APIURL)
	}
	if cfg.Storage.PublicBaseURL != "https://storage.googleapis.com" {
		t.Errorf("Unexpected public base URL %s", cfg.Storage.PublicBaseURL)
	}
	if len(cfg.CORS.Origins) != 1 {
		t.Errorf("Expected 1 CORS origin, got %d", len(cfg.CORS.Origins))
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()
	setRequiredEnv()
	os.Setenv("PORT", "9090")
	os.Setenv("ENV", "production")
	os.Setenv("LOG_LEVEL", "warn")
	os.Setenv("DB_HOST", "db.internal")
	os.Setenv("DB_POOL_MIN", "5")
	os.Setenv("DB_POOL_MAX", "20")
	os.Setenv("DB_AUTO_MIGRATE", "true")
	os.Setenv("CRM_API_URL", "https://crm.example.com/v2/")
	os.Setenv("CRM_PAGE_SIZE", "50")
	os.Setenv("CRM_TIMEOUT", "45s")
	os.Setenv("CRM_RATE_LIMIT", "2.5")
	os.Setenv("GCS_PUBLIC_BASE_URL", "https://cdn.example.com/")
	os.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	defer clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.Server.LogLevel)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected host db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Database.PoolMin != 5 || cfg.Database.PoolMax != 20 {
		t.Errorf("Expected pool 5-20, got %d-%d", cfg.Database.PoolMin, cfg.Database.PoolMax)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("Expected auto migrate to be enabled")
	}
	if cfg.CRM.APIURL != "https://crm.example.com/v2" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", cfg.CRM.APIURL)
	}
	if cfg.CRM.PageSize != 50 {
		t.Errorf("Expected page size 50, got %d", cfg.CRM.PageSize)
	}
	if cfg.CRM.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %s", cfg.CRM.Timeout)
	}
	if cfg.CRM.RateLimit != 2.5 {
		t.Errorf("Expected rate limit 2.5, got %f", cfg.CRM.RateLimit)
	}
	if cfg.Storage.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", cfg.Storage.PublicBaseURL)
	}
	if cfg.CRM.ClientID != "client-id" || cfg.Storage.BucketName != "crm-files" {
		t.Error("Expected required values to be read from the environment")
	}
	if len(cfg.CORS.Origins) != 2 || cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Unexpected CORS origins %v", cfg.CORS.Origins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	required := []string{
		"DB_PASSWORD",
		"CRM_CLIENT_ID",
		"CRM_CLIENT_SECRET",
		"CRM_REFRESH_TOKEN",
		"GCS_BUCKET_NAME",
	}

	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			clearConfigEnvVars()
			setRequiredEnv()
			os.Unsetenv(key)
			defer clearConfigEnvVars()

			if _, err := Load(); err == nil {
				t.Errorf("Expected error when %s is missing", key)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "6000", Env: "development"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "crmsync",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CRM: CRMConfig{
			ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh",
			TokenURL: "https://accounts.example.com/token", APIURL: "https://crm.example.com",
			PageSize: 200, RateLimit: 10, RateBurst: 5, BreakerMaxFailures: 5,
		},
		Storage: StorageConfig{BucketName: "bucket", PublicBaseURL: "https://storage.googleapis.com"},
		CORS:    CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative pool min", func(c *Config) { c.Database.PoolMin = -1 }},
		{"zero pool max", func(c *Config) { c.Database.PoolMin = 0; c.Database.PoolMax = 0 }},
		{"pool min greater than max", func(c *Config) { c.Database.PoolMin = 15 }},
		{"zero page size", func(c *Config) { c.CRM.PageSize = 0 }},
		{"page size too large", func(c *Config) { c.CRM.PageSize = MaxPageSize + 1 }},
		{"negative timeout", func(c *Config) { c.CRM.Timeout = -time.Second }},
		{"zero rate limit", func(c *Config) { c.CRM.RateLimit = 0 }},
		{"zero burst", func(c *Config) { c.CRM.RateBurst = 0 }},
		{"zero breaker failures", func(c *Config) { c.CRM.BreakerMaxFailures = 0 }},
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing token url", func(c *Config) { c.CRM.TokenURL = "" }},
		{"missing bucket", func(c *Config) { c.Storage.BucketName = "" }},
		{"missing CORS origins", func(c *Config) { c.CORS.Origins = []string{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "single origin",
			input:  "http://localhost:3000",
			expect: []string{"http://localhost:3000"},
		},
		{
			name:   "origins with spaces",
			input:  " http://localhost:3000 , http://localhost:3001 ",
			expect: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		{
			name:   "empty string",
			input:  "",
			expect: []string{},
		},
		{
			name:   "only commas",
			input:  ",,,",
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}

// Helper function to clear all config-related environment variables
func clearConfigEnvVars() {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSLMODE",
		"DB_POOL_MIN", "DB_POOL_MAX", "DB_AUTO_MIGRATE",
		"CRM_CLIENT_ID", "CRM_CLIENT_SECRET", "CRM_REFRESH_TOKEN", "CRM_TOKEN_URL",
		"CRM_API_URL", "CRM_PAGE_SIZE", "CRM_TIMEOUT", "CRM_RATE_LIMIT", "CRM_RATE_BURST",
		"CRM_BREAKER_MAX_FAILURES",
		"GCS_BUCKET_NAME", "GOOGLE_APPLICATION_CREDENTIALS", "GCS_PUBLIC_BASE_URL",
		"CORS_ORIGINS",
	} {
		os.Unsetenv(key)
	}
}
