package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "BACKEND_API_URL", "HTTP_TIMEOUT", "CACHE_TTL"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.BackendAPIURL != "http://localhost:8000" {
		t.Errorf("unexpected backend url %q", cfg.BackendAPIURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.HTTPTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_API_URL", "https://api.budgetwise.test")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := config.Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.BackendAPIURL != "https://api.budgetwise.test" {
		t.Errorf("unexpected backend url %q", cfg.BackendAPIURL)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("expected 30s cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("expected invalid int to fall back to 2, got %d", cfg.MaxRetries)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := config.Load()
	cfg.Port = 0
	cfg.BackendAPIURL = "not a url"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"PORT", "BACKEND_API_URL", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "BUDGETWISE_TEST_A=from-file\nBUDGETWISE_TEST_B=\"quoted\"\n# comment\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BUDGETWISE_TEST_A", "from-env")
	t.Setenv("BUDGETWISE_TEST_B", "")
	os.Unsetenv("BUDGETWISE_TEST_B")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("BUDGETWISE_TEST_A"); got != "from-env" {
		t.Errorf("expected env to win, got %q", got)
	}
	if got := os.Getenv("BUDGETWISE_TEST_B"); got != "quoted" {
		t.Errorf("expected quoted value from file, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("expected missing file to be ignored, got %v", err)
	}
}
