package database

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stwalsh4118/crmsync/internal/config"
)

// Test configuration for local PostgreSQL
func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "crmsync"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		SSLMode:  "disable",
		PoolMin:  2,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestBuildDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		Name:     "crmsync",
		User:     "sync",
		Password: "p@ss:word/1",
	}

	dsn := buildDSN(cfg)

	parsed, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("Expected a parseable DSN, got %v", err)
	}
	if parsed.Host != "db.internal:5433" {
		t.Errorf("Expected host db.internal:5433, got %s", parsed.Host)
	}
	if parsed.Path != "/crmsync" {
		t.Errorf("Expected path /crmsync, got %s", parsed.Path)
	}
	if password, _ := parsed.User.Password(); password != "p@ss:word/1" {
		t.Errorf("Expected password to round-trip, got %s", password)
	}
	if parsed.Query().Get("sslmode") != "disable" {
		t.Errorf("Expected default sslmode disable, got %s", parsed.Query().Get("sslmode"))
	}

	cfg.SSLMode = "require"
	parsed, _ = url.Parse(buildDSN(cfg))
	if parsed.Query().Get("sslmode") != "require" {
		t.Errorf("Expected sslmode require, got %s", parsed.Query().Get("sslmode"))
	}
}

func TestNewPostgresPool_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	defer db.Close()

	if db.Pool == nil {
		t.Error("Expected Pool to be initialized")
	}
	if db.Stats() == nil {
		t.Error("Expected stats to be available")
	}
}

func TestNewPostgresPool_InvalidHost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cfg := getTestConfig()
	cfg.Host = "invalid-host-that-does-not-exist"

	if _, err := NewPostgresPool(ctx, cfg); err == nil {
		t.Error("Expected error when connecting to invalid host")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("First migration failed: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}

	var count int
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_name IN ('Cities', 'Project_Attributes', 'Mega_Projects', 'Projects', 'Typologies')
	`).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to inspect schema: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 sync tables, got %d", count)
	}
}

func TestPing_AfterClose(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	db.Close()

	if err := db.Ping(ctx); err == nil {
		t.Error("Expected ping to fail after pool is closed")
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := NewPostgresPool(context.Background(), getTestConfig())
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	// Close multiple times should not panic
	db.Close()
	db.Close()
}
