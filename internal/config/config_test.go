package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "apicall" {
		t.Fatalf("unexpected app name %q", cfg.AppName)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no transport timeout by default, got %v", cfg.HTTPTimeout)
	}
	if cfg.CookieTTL != 7*24*time.Hour {
		t.Fatalf("unexpected cookie ttl %v", cfg.CookieTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BASE_URL", " https://api.example.com/ ")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "12")
	t.Setenv("COOKIE_STORE_TYPE", "bbolt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Fatalf("base url not normalized: %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 12*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
	if cfg.CookieStoreType != "bbolt" {
		t.Fatalf("unexpected cookie store type %q", cfg.CookieStoreType)
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("BATCH_CONCURRENCY", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero batch concurrency")
	}
}
