package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "https://wardrobe-backend-o0fr.onrender.com" {
		t.Errorf("unexpected base URL: %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Backend.Retries != 1 {
		t.Errorf("expected one retry by default, got %d", cfg.Backend.Retries)
	}
	if cfg.Storage.Type != StorageSQLite {
		t.Errorf("expected sqlite storage by default, got %s", cfg.Storage.Type)
	}
	if cfg.Companion.Address() != "127.0.0.1:7420" {
		t.Errorf("unexpected companion address: %s", cfg.Companion.Address())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:8000/")
	t.Setenv("BACKEND_TIMEOUT", "2s")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("COMPANION_API_KEYS", "k1,k2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Storage.RedisAddress() != "localhost:6380" {
		t.Errorf("unexpected redis address: %s", cfg.Storage.RedisAddress())
	}
	if len(cfg.Companion.APIKeys) != 2 || cfg.Companion.APIKeys[1] != "k2" {
		t.Errorf("unexpected api keys: %v", cfg.Companion.APIKeys)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad scheme", "BACKEND_BASE_URL", "ftp://example.com"},
		{"unknown storage", "STORAGE_TYPE", "mongodb"},
		{"too many retries", "BACKEND_RETRIES", "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestProcessDefersValidation(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "ftp://example.com")

	cfg, err := Process()
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected env value to fail validation")
	}
	cfg.Backend.BaseURL = "http://localhost:8000"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected override to validate, got %v", err)
	}
}

func TestStorageDSNs(t *testing.T) {
	s := StorageConfig{Host: "db", Name: "wardrobe", User: "u", Password: "p@ss", SSLMode: "disable"}

	if got := s.MySQLDSN(); got != "u:p@ss@tcp(db:3306)/wardrobe?parseTime=true" {
		t.Errorf("unexpected mysql dsn: %s", got)
	}
	if got := s.PostgresDSN(); !strings.HasPrefix(got, "postgres://u:p%40ss@db:5432/wardrobe") {
		t.Errorf("unexpected postgres dsn: %s", got)
	}
}
