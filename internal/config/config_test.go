package config

import (
	"os"
	"testing"
	"time"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	unsetenv(t, "HTTP_ADDR", "REDIS_ADDR", "DEFAULT_CURRENCY", "SHUTDOWN_TIMEOUT", "DB_MAX_CONNS", "DB_TRACE_QUERIES")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if cfg.DefaultCurrency != "USD" {
		t.Fatalf("expected USD, got %q", cfg.DefaultCurrency)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("expected redis disabled without address")
	}
	if cfg.DBMaxConns != 10 || cfg.DBTraceQueries {
		t.Fatalf("unexpected db settings %d %v", cfg.DBMaxConns, cfg.DBTraceQueries)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DEFAULT_CURRENCY", "cad")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CHECKOUT_CACHE_TTL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.DefaultCurrency != "CAD" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.TTL != 2*time.Minute {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestFromEnvRejectsBadCurrency(t *testing.T) {
	t.Setenv("DEFAULT_CURRENCY", "dollars")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected currency error")
	}
}
