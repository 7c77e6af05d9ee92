package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
wordpress:
  baseUrl: https://beer.example
  username: editor
gemini:
  apiKey: file-key
categories:
  table:
    深掘り: 99
  featuredId: 77
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(wordpressPassEnv, "env-password")
	t.Setenv(geminiAPIKeyEnv, "env-key")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level: %q", cfg.Logging.Level)
	}
	if cfg.WordPress.BaseURL != "https://beer.example" || cfg.WordPress.Username != "editor" {
		t.Fatalf("file values lost: %+v", cfg.WordPress)
	}
	if cfg.WordPress.AppPassword != "env-password" {
		t.Fatalf("env override lost: %q", cfg.WordPress.AppPassword)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Fatalf("env should win over file: %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != defaultGeminiModel {
		t.Fatalf("default model lost: %q", cfg.Gemini.Model)
	}
	if cfg.Categories.Table["深掘り"] != 99 || cfg.Categories.FeaturedID != 77 {
		t.Fatalf("category config lost: %+v", cfg.Categories)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		WordPress: WordPressConfig{BaseURL: "https://beer.example", Username: "e", AppPassword: "p"},
		Gemini:    GeminiConfig{APIKey: "k"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.WordPress.BaseURL = "" }},
		{"missing username", func(c *Config) { c.WordPress.Username = "" }},
		{"missing password", func(c *Config) { c.WordPress.AppPassword = "" }},
		{"missing gemini key", func(c *Config) { c.Gemini.APIKey = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
