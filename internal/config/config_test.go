package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AUTO_ADVANCE_MS", "")
	t.Setenv("DB_TYPE", "")

	cfg := Load()
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.AutoAdvanceDelay != 3*time.Second {
		t.Errorf("AutoAdvanceDelay = %v, want 3s", cfg.AutoAdvanceDelay)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTO_ADVANCE_MS", "1500")
	t.Setenv("TTS_ENABLED", "false")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("APP_BASE_URL", "https://drill.example.com/")

	cfg := Load()
	if cfg.AutoAdvanceDelay != 1500*time.Millisecond {
		t.Errorf("AutoAdvanceDelay = %v, want 1.5s", cfg.AutoAdvanceDelay)
	}
	if cfg.TTSEnabled {
		t.Error("TTSEnabled = true, want false")
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.TokenTTL)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want fallback 0", cfg.RedisDB)
	}
	if cfg.AppBaseURL != "https://drill.example.com" {
		t.Errorf("AppBaseURL = %q", cfg.AppBaseURL)
	}
}
