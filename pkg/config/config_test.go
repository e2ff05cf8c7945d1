package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Retrieval.DefaultScheme != "raw" {
		t.Errorf("DefaultScheme = %q, want raw", cfg.Retrieval.DefaultScheme)
	}
	if cfg.Retrieval.ExpansionThreshold != 0.7 {
		t.Errorf("ExpansionThreshold = %v, want 0.7", cfg.Retrieval.ExpansionThreshold)
	}
	if cfg.Embedding.Dimension != 100 {
		t.Errorf("Embedding.Dimension = %d, want 100", cfg.Embedding.Dimension)
	}
	if cfg.Tokenizer.Stemmer != "porter" {
		t.Errorf("Stemmer = %q, want porter", cfg.Tokenizer.Stemmer)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9001
retrieval:
  defaultScheme: log
  defaultLimit: 25
tokenizer:
  stemmer: none
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Retrieval.DefaultScheme != "log" {
		t.Errorf("DefaultScheme = %q, want log", cfg.Retrieval.DefaultScheme)
	}
	if cfg.Retrieval.DefaultLimit != 25 {
		t.Errorf("DefaultLimit = %d, want 25", cfg.Retrieval.DefaultLimit)
	}
	if cfg.Tokenizer.Stemmer != "none" {
		t.Errorf("Stemmer = %q, want none", cfg.Tokenizer.Stemmer)
	}
	// Unspecified sections keep their defaults.
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Metrics.Port = %d, want default 9090", cfg.Metrics.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IR_SERVER_PORT", "7777")
	t.Setenv("IR_STEMMER", "none")
	t.Setenv("IR_DEFAULT_SCHEME", "augmented")
	t.Setenv("IR_REDIS_ADDR", "redis.internal:6380")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Tokenizer.Stemmer != "none" {
		t.Errorf("Stemmer = %q, want none", cfg.Tokenizer.Stemmer)
	}
	if cfg.Retrieval.DefaultScheme != "augmented" {
		t.Errorf("DefaultScheme = %q, want augmented", cfg.Retrieval.DefaultScheme)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
}

func TestEnvOverrideIgnoresInvalidPort(t *testing.T) {
	t.Setenv("IR_SERVER_PORT", "not-a-port")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want default 8000", cfg.Server.Port)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	dsn := cfg.Postgres.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=irsystem", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}
}
