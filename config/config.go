package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Pointer fields distinguish an
// explicit zero from an unset value, since zero is meaningful for them: a
// max_depth of 0 expands only the root, and a throttle_secs of 0 disables
// the inter-call delay.
type Config struct {
	BaseURL          string   `yaml:"base_url"`
	RootCategory     int64    `yaml:"root_category"`
	MaxDepth         *int     `yaml:"max_depth"`
	SeriesLimit      int      `yaml:"series_limit"`
	ThrottleSecs     *float64 `yaml:"throttle_secs"`
	CacheEnabled     *bool    `yaml:"cache_enabled"`
	CacheFile        string   `yaml:"cache_file"`
	CacheExpireHours int      `yaml:"cache_expire_hours"`
	OutputFile       string   `yaml:"output_file"`
	APIKeyFile       string   `yaml:"api_key_file"`
	DBPath           string   `yaml:"db_path"`
	WatchTime        string   `yaml:"watch_time"`
	Timezone         string   `yaml:"timezone"`
	LogLevel         string   `yaml:"log_level"`
}

// watchTimeRegex validates HH:MM format with proper ranges.
var watchTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// apiKeyRegex matches the documented key shape: 32 lower-case alphanumerics.
var apiKeyRegex = regexp.MustCompile(`^[a-z0-9]{32}$`)

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("FRED_CATALOG_CONFIG"); path != "" {
		return path
	}
	return "./config.yaml"
}

// Depth returns the maximum traversal depth.
func (c *Config) Depth() int {
	return *c.MaxDepth
}

// Throttle returns the inter-call delay as a duration.
func (c *Config) Throttle() time.Duration {
	return time.Duration(*c.ThrottleSecs * float64(time.Second))
}

// CacheTTL returns the cache expiration as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpireHours) * time.Hour
}

// CacheOn reports whether the request cache is enabled (default true).
func (c *Config) CacheOn() bool {
	return c.CacheEnabled == nil || *c.CacheEnabled
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stlouisfed.org/fred"
	}
	if cfg.MaxDepth == nil {
		depth := 2
		cfg.MaxDepth = &depth
	}
	if cfg.SeriesLimit == 0 {
		cfg.SeriesLimit = 100
	}
	if cfg.ThrottleSecs == nil {
		throttle := 1.0
		cfg.ThrottleSecs = &throttle
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = "./cache.json"
	}
	if cfg.CacheExpireHours == 0 {
		cfg.CacheExpireHours = 24
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "./fred_catalog.txt"
	}
	if cfg.APIKeyFile == "" {
		cfg.APIKeyFile = "./api_key.json"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./fred-catalog.db"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if dbPath := os.Getenv("FRED_CATALOG_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
}

func validate(cfg *Config) error {
	if cfg.RootCategory < 0 {
		return fmt.Errorf("root_category must be non-negative, got %d", cfg.RootCategory)
	}
	if *cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", *cfg.MaxDepth)
	}
	if cfg.SeriesLimit < 1 {
		return fmt.Errorf("series_limit must be positive, got %d", cfg.SeriesLimit)
	}
	if *cfg.ThrottleSecs < 0 {
		return fmt.Errorf("throttle_secs must be non-negative, got %v", *cfg.ThrottleSecs)
	}
	if cfg.WatchTime != "" && !watchTimeRegex.MatchString(cfg.WatchTime) {
		return fmt.Errorf("watch_time must be in HH:MM format (00:00-23:59), got %q", cfg.WatchTime)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return nil
}

// LoadAPIKey reads the FRED API key from its own JSON file, kept separate
// from the config so the credential stays out of source control. The file
// holds a single object: {"api_key": "<32 lower-case alphanumerics>"}.
func LoadAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read API key file: %w", err)
	}

	var payload struct {
		APIKey string `json:"api_key"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("parse API key file: %w", err)
	}
	if !apiKeyRegex.MatchString(payload.APIKey) {
		return "", fmt.Errorf("api_key value missing or improperly formatted")
	}
	return payload.APIKey, nil
}
