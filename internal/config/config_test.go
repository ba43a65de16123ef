package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.MaxAccuracyM <= 0 || cfg.MaxSpeedMps <= 0 {
		t.Fatalf("expected positive noise thresholds")
	}
	if cfg.AutopauseResumeMps <= cfg.AutopausePauseMps {
		t.Fatalf("expected hysteresis gap between pause and resume thresholds")
	}
	if cfg.AutopauseDebounce() != 5*time.Second {
		t.Fatalf("unexpected debounce: %v", cfg.AutopauseDebounce())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("MAX_ACCURACY_M", "25")
	t.Setenv("AUTOPAUSE_DEBOUNCE_SEC", "10")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.MaxAccuracyM != 25 {
		t.Fatalf("expected override accuracy ceiling")
	}
	if cfg.AutopauseDebounce() != 10*time.Second {
		t.Fatalf("expected override debounce")
	}
}
