// Package config loads and persists user configuration. Settings live in a
// project-local .wright/config.json when available, falling back to
// ~/.codewright/config.json, with environment variables taking precedence
// over both.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// LoggingConfig mirrors the gate read by the logging package.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories,omitempty"`
	Level      string          `json:"level,omitempty"`
	JSONFormat bool            `json:"json_format,omitempty"`
}

// Config holds user preferences.
type Config struct {
	APIKey   string        `json:"api_key"`
	Provider string        `json:"provider"` // "openai" or "gemini"
	BaseURL  string        `json:"base_url,omitempty"`
	Model    string        `json:"model,omitempty"`
	Theme    string        `json:"theme"` // "light" or "dark"
	Logging  LoggingConfig `json:"logging,omitempty"`
	// RunTimeout bounds process execution for the run handler.
	RunTimeout time.Duration `json:"run_timeout,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Provider:   "openai",
		Theme:      "dark",
		RunTimeout: 2 * time.Minute,
	}
}

// Dir returns the directory where config is stored. A project-local .wright
// directory wins when present or creatable.
func Dir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".wright")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codewright"), nil
}

// File returns the full path to the config file.
func File() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies environment overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path, err := File()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyEnv(cfg), nil
	}
	if err != nil {
		return applyEnv(cfg), err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), err
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultConfig().RunTimeout
	}

	return applyEnv(cfg), nil
}

// applyEnv lets environment variables override file settings.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("CODEWRIGHT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("CODEWRIGHT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CODEWRIGHT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CODEWRIGHT_MODEL"); v != "" {
		cfg.Model = v
	}
	return cfg
}

// Save writes the configuration to disk.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.json")
	return os.WriteFile(path, data, 0600)
}
