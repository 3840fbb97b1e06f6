package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.Database.Driver != "postgres" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Loader.Cron != "0 0 3 * * *" || !cfg.Loader.RunOnStart {
		t.Fatalf("unexpected loader defaults %+v", cfg.Loader)
	}
	if cfg.Redis.CacheTTL != 24*time.Hour {
		t.Fatalf("unexpected redis ttl %v", cfg.Redis.CacheTTL)
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	body := "DB_DRIVER=sqlite\nCORS_ALLOWED_ORIGINS=https://a.example,https://b.example\nLOADER_CRON=0 30 4 * * *\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	// godotenv never overrides variables that are already set
	t.Setenv("DB_DRIVER", "postgres")
	t.Cleanup(func() {
		os.Unsetenv("CORS_ALLOWED_ORIGINS")
		os.Unsetenv("LOADER_CRON")
	})

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("env var should win over .env, got %q", cfg.Database.Driver)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Loader.Cron != "0 30 4 * * *" {
		t.Fatalf("unexpected cron %q", cfg.Loader.Cron)
	}
}
