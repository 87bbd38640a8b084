package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ConfigDirName  = ".qq"
	ConfigFileName = "config.yaml"
)

// Config holds the optional on-disk defaults. The API key is deliberately
// not part of it; credentials come only from the environment.
type Config struct {
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	IncludeEnv  bool     `yaml:"include_env,omitempty"`
	NoColor     bool     `yaml:"no_color,omitempty"`
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName), nil
}

// Load reads the configuration from disk. A missing file is not an error;
// it returns nil so callers fall back to flag defaults.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// APIKey resolves the backend credential from the environment. QQ_API_KEY
// takes precedence over OPENAI_API_KEY; the value is treated as an opaque
// pass-through.
func APIKey() string {
	if key := os.Getenv("QQ_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}
