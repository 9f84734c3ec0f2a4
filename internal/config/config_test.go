package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, databaseDSNEnv, openAIAPIKeyEnv,
		openAIModelEnv, scraperBaseURLEnv, logLevelEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Scraper.BaseURL != "https://www.trolley.co.uk" {
		t.Errorf("unexpected base url: %s", cfg.Scraper.BaseURL)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model: %s", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != 800 {
		t.Errorf("unexpected max tokens: %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unexpected log level: %s", cfg.Logging.Level)
	}
	if cfg.Cache.Duration() != time.Hour {
		t.Errorf("unexpected cache ttl: %s", cfg.Cache.Duration())
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
logging:
  level: debug
scraper:
  sampleSize: 8
cache:
  ttl: 30m
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(scraperBaseURLEnv, "http://localhost:8081")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Errorf("file override lost: %s", cfg.Logging.Level)
	}
	if cfg.Scraper.SampleSize != 8 {
		t.Errorf("file override lost: %d", cfg.Scraper.SampleSize)
	}
	if cfg.Cache.Duration() != 30*time.Minute {
		t.Errorf("file override lost: %s", cfg.Cache.Duration())
	}
	// Env wins over file and defaults.
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("env override lost: %s", cfg.OpenAI.APIKey)
	}
	if cfg.Scraper.BaseURL != "http://localhost:8081" {
		t.Errorf("env override lost: %s", cfg.Scraper.BaseURL)
	}
	// Untouched fields keep defaults.
	if cfg.Scraper.ListingLimit != 10 {
		t.Errorf("default lost: %d", cfg.Scraper.ListingLimit)
	}
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.Scraper.BaseURL != "https://www.trolley.co.uk" {
		t.Errorf("defaults lost on unreadable file: %s", cfg.Scraper.BaseURL)
	}
}

func TestScraperTimeout(t *testing.T) {
	if got := (ScraperConfig{}).Timeout(); got != 10*time.Second {
		t.Errorf("unexpected default timeout: %s", got)
	}
	if got := (ScraperConfig{TimeoutSeconds: 3}).Timeout(); got != 3*time.Second {
		t.Errorf("unexpected timeout: %s", got)
	}
}

func TestCacheDuration(t *testing.T) {
	tests := []struct {
		ttl  string
		want time.Duration
	}{
		{"", time.Hour},
		{"15m", 15 * time.Minute},
		{"garbage", time.Hour},
		{"-5m", time.Hour},
	}
	for _, tt := range tests {
		if got := (CacheConfig{TTL: tt.ttl}).Duration(); got != tt.want {
			t.Errorf("Duration(%q) = %s, want %s", tt.ttl, got, tt.want)
		}
	}
}
