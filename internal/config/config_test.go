package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing config must not be an error: %v", err)
	}
	if cfg != nil {
		t.Error("expected nil config when no file exists")
	}
}

func TestLoadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("model: gpt-4o\ntemperature: 0.2\nbase_url: http://localhost:8080/v1\nno_color: true\n")
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("unexpected model: %q", cfg.Model)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("unexpected base URL: %q", cfg.BaseURL)
	}
	if !cfg.NoColor {
		t.Error("no_color not honored")
	}
	if cfg.IncludeEnv {
		t.Error("include_env should default to false")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("model: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected a parse error")
	}
}

func TestAPIKeyPrecedence(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("QQ_API_KEY", "qq-key")
	if got := APIKey(); got != "qq-key" {
		t.Errorf("QQ_API_KEY must win, got %q", got)
	}

	t.Setenv("QQ_API_KEY", "")
	if got := APIKey(); got != "openai-key" {
		t.Errorf("expected fallback to OPENAI_API_KEY, got %q", got)
	}
}
