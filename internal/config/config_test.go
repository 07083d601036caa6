package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TickInterval() != 100*time.Millisecond {
		t.Errorf("Expected 100ms tick, got %v", cfg.TickInterval())
	}
	if cfg.DefaultTrackLength() != 100*time.Second {
		t.Errorf("Expected 100s default length, got %v", cfg.DefaultTrackLength())
	}
}

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mp3miner", "config.json")

	if _, err := LoadOrCreate(path); err != nil {
		t.Fatalf("LoadOrCreate returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected config file to be created: %v", err)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"tick_interval_ms": 250}`), 0644)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TickInterval() != 250*time.Millisecond {
		t.Errorf("Expected 250ms tick, got %v", cfg.TickInterval())
	}
	if cfg.KeyBindings.Next != "n" {
		t.Errorf("Expected default key bindings, got %+v", cfg.KeyBindings)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{`), 0644)

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MP3MINER_TEMP_DIR", "/var/tmp/mp3")
	t.Setenv("MP3MINER_LOG_LEVEL", "debug")
	t.Setenv("MP3MINER_HTTP_TIMEOUT_SEC", "5")

	cfg := GetDefaultConfig()
	cfg.ApplyEnv()

	if cfg.TempRoot != "/var/tmp/mp3" || cfg.LogLevel != "debug" {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if cfg.HTTPTimeout() != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.HTTPTimeout())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	os.WriteFile(envFile, []byte("MP3MINER_USER_AGENT=from-dotenv\n"), 0644)
	t.Setenv("MP3MINER_USER_AGENT", "")
	os.Unsetenv("MP3MINER_USER_AGENT")

	if err := LoadDotEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	cfg := GetDefaultConfig()
	cfg.ApplyEnv()
	if cfg.UserAgent != "from-dotenv" {
		t.Errorf("Expected user agent from .env, got %q", cfg.UserAgent)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("MP3MINER_CONFIG", "/etc/mp3miner.json")
	if got := GetConfigPath(); got != "/etc/mp3miner.json" {
		t.Errorf("Expected env override, got %s", got)
	}
}
