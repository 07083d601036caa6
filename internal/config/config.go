package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	TempRoot              string `json:"temp_root"`
	TickIntervalMS        int    `json:"tick_interval_ms"`
	DefaultTrackLengthSec int    `json:"default_track_length_sec"`
	HTTPTimeoutSec        int    `json:"http_timeout_sec"`
	UserAgent             string `json:"user_agent"`
	LogLevel              string `json:"log_level"`
	LogFile               string `json:"log_file"`
	KeyBindings           KeyMap `json:"key_bindings"`
}

// KeyMap defines keyboard shortcuts
type KeyMap struct {
	PlayPause   string `json:"play_pause"`
	Next        string `json:"next"`
	Previous    string `json:"previous"`
	SeekForward string `json:"seek_forward"`
	SeekBack    string `json:"seek_back"`
	SeekCommit  string `json:"seek_commit"`
	Quit        string `json:"quit"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		TempRoot:              "",
		TickIntervalMS:        100,
		DefaultTrackLengthSec: 100,
		HTTPTimeoutSec:        60,
		UserAgent:             "mp3miner",
		LogLevel:              "info",
		KeyBindings: KeyMap{
			PlayPause:   " ",
			Next:        "n",
			Previous:    "p",
			SeekForward: "right",
			SeekBack:    "left",
			SeekCommit:  "enter",
			Quit:        "q",
		},
	}
}

// TickInterval returns the progress ticker period
func (c *Config) TickInterval() time.Duration {
	if c.TickIntervalMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// DefaultTrackLength returns the length assumed when probing fails
func (c *Config) DefaultTrackLength() time.Duration {
	if c.DefaultTrackLengthSec <= 0 {
		return 100 * time.Second
	}
	return time.Duration(c.DefaultTrackLengthSec) * time.Second
}

// HTTPTimeout returns the download timeout
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// LoadConfig reads and unmarshals configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return GetDefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config fields from MP3MINER_* environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MP3MINER_TEMP_DIR"); v != "" {
		c.TempRoot = v
	}
	if v := os.Getenv("MP3MINER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MP3MINER_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("MP3MINER_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("MP3MINER_HTTP_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HTTPTimeoutSec = n
		}
	}
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	if path := os.Getenv("MP3MINER_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mp3miner", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "mp3miner", "config.json")
}
