package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "BREWPRESS_CONFIG"
	wordpressURLEnv    = "WORDPRESS_URL"
	wordpressUserEnv   = "WORDPRESS_USER"
	wordpressPassEnv   = "WORDPRESS_APP_PASSWORD"
	geminiAPIKeyEnv    = "GEMINI_API_KEY"
	geminiModelEnv     = "GEMINI_MODEL"
	databaseDSNEnv     = "DATABASE_DSN"
	importTriggerEnv   = "IMPORT_TRIGGER_URL"
	importStatusEnv    = "IMPORT_STATUS_URL"
	logLevelEnv        = "BREWPRESS_LOG_LEVEL"
	defaultGeminiModel = "gemini-2.0-flash"
)

// Config holds settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	WordPress  WordPressConfig  `yaml:"wordpress"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Import     ImportConfig     `yaml:"import"`
	Database   DatabaseConfig   `yaml:"database"`
	Categories CategoriesConfig `yaml:"categories"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WordPressConfig wires the content store's REST API.
type WordPressConfig struct {
	BaseURL     string `yaml:"baseUrl"`
	Username    string `yaml:"username"`
	AppPassword string `yaml:"appPassword"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// ImportConfig holds the bulk-import trigger and status endpoints.
type ImportConfig struct {
	TriggerURL string `yaml:"triggerUrl"`
	StatusURL  string `yaml:"statusUrl"`
}

// DatabaseConfig describes the optional enrichment-record store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// CategoriesConfig maps the site's category names to term ids.
type CategoriesConfig struct {
	Table      map[string]int `yaml:"table"`
	FallbackID int            `yaml:"fallbackId"`
	FeaturedID int            `yaml:"featuredId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate reports the unrecoverable misconfigurations that must stop the
// process before any post is touched.
func (c Config) Validate() error {
	if c.WordPress.BaseURL == "" {
		return fmt.Errorf("wordpress base url is required")
	}
	if c.WordPress.Username == "" || c.WordPress.AppPassword == "" {
		return fmt.Errorf("wordpress credentials are required")
	}
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini api key is required")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(wordpressURLEnv); v != "" {
		c.WordPress.BaseURL = v
	}
	if v := os.Getenv(wordpressUserEnv); v != "" {
		c.WordPress.Username = v
	}
	if v := os.Getenv(wordpressPassEnv); v != "" {
		c.WordPress.AppPassword = v
	}
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(importTriggerEnv); v != "" {
		c.Import.TriggerURL = v
	}
	if v := os.Getenv(importStatusEnv); v != "" {
		c.Import.StatusURL = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.WordPress.BaseURL != "" {
		base.WordPress.BaseURL = override.WordPress.BaseURL
	}
	if override.WordPress.Username != "" {
		base.WordPress.Username = override.WordPress.Username
	}
	if override.WordPress.AppPassword != "" {
		base.WordPress.AppPassword = override.WordPress.AppPassword
	}

	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}

	if override.Import.TriggerURL != "" {
		base.Import.TriggerURL = override.Import.TriggerURL
	}
	if override.Import.StatusURL != "" {
		base.Import.StatusURL = override.Import.StatusURL
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if len(override.Categories.Table) > 0 {
		base.Categories.Table = override.Categories.Table
	}
	if override.Categories.FallbackID != 0 {
		base.Categories.FallbackID = override.Categories.FallbackID
	}
	if override.Categories.FeaturedID != 0 {
		base.Categories.FeaturedID = override.Categories.FeaturedID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Gemini:  GeminiConfig{Model: defaultGeminiModel},
	}
}
