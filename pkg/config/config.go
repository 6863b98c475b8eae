// Package config loads the dealcoach configuration: model selection, the
// live-AI toggle, the server port and the optional MySQL DSN. A cwd-local
// .dealcoach/config.json wins over the home-directory one.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	AIEnabled    bool    `json:"ai_enabled"`
	ServerPort   int     `json:"server_port"`
	MySQLDSN     string  `json:"mysql_dsn"`
	TaxTablePath string  `json:"tax_table_path"` // empty = embedded defaults
	DefaultState string  `json:"default_state"`
	UserID       string  `json:"user_id"`
}

func (cfg *Config) setDefaultValues() {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = 8731
	}
	if cfg.UserID == "" {
		cfg.UserID = "local"
	}
	if cfg.MySQLDSN == "" {
		cfg.MySQLDSN = os.Getenv("DEALCOACH_MYSQL_DSN")
	}
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dealcoach", "config.json")
}

func localConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".dealcoach", "config.json")
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.setDefaultValues()
	return &cfg, nil
}

func saveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads the config, local dir first, then home. A missing config is not
// an error; defaults apply.
func Load() (*Config, error) {
	for _, path := range []string{localConfigPath(), homeConfigPath()} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return loadConfig(path)
		}
	}
	cfg := &Config{}
	cfg.setDefaultValues()
	return cfg, nil
}

// Init writes a default config file to the home directory and returns its
// path. Used by the init command.
func Init() (string, error) {
	path := homeConfigPath()
	if path == "" {
		return "", fmt.Errorf("could not determine home directory")
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config already exists at %s", path)
	}
	cfg := &Config{AIEnabled: true}
	cfg.setDefaultValues()
	if err := saveConfig(path, cfg); err != nil {
		return "", fmt.Errorf("could not write config: %w", err)
	}
	return path, nil
}
