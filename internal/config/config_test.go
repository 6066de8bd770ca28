package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":3080" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.DatabasePath == "" {
		t.Fatal("expected default database path")
	}
	if cfg.RateLimit != 50 || cfg.RateBurst != 100 {
		t.Fatalf("expected default rate limits, got %d/%d", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "listen_addr: \":9999\"\ndatabase_path: /tmp/tt.db\ntimezone: Europe/Berlin\nrate_limit: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Fatalf("expected :9999, got %q", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "/tmp/tt.db" {
		t.Fatalf("expected /tmp/tt.db, got %q", cfg.DatabasePath)
	}
	if cfg.RateLimit != 5 {
		t.Fatalf("expected rate limit 5, got %d", cfg.RateLimit)
	}
	// Unset values still get defaults.
	if cfg.RateBurst != 100 {
		t.Fatalf("expected default burst, got %d", cfg.RateBurst)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml:::"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	if cfg.Location() != time.UTC {
		t.Fatal("expected UTC")
	}
	cfg = &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatal("unknown zone should fall back to UTC")
	}
}
