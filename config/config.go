package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the complete tradebook configuration
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Enrich   EnrichConfig   `json:"enrich" yaml:"enrich"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Console  ConsoleConfig  `json:"console" yaml:"console"`
	Tax      TaxConfig      `json:"tax" yaml:"tax"`
}

type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"` // debug, info, warn, error
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// EnrichConfig selects the stock data provider and how hard to call it.
type EnrichConfig struct {
	Provider          string  `json:"provider" yaml:"provider"` // "alphavantage", "fmp" or "none"
	AlphaVantageKey   string  `json:"alphavantage_key,omitempty" yaml:"alphavantage_key,omitempty"`
	FMPKey            string  `json:"fmp_key,omitempty" yaml:"fmp_key,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	DailyBudget       int     `json:"daily_budget,omitempty" yaml:"daily_budget,omitempty"`
	Schedule          string  `json:"schedule,omitempty" yaml:"schedule,omitempty"` // cron expression for the end of day fetch
}

type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// ConsoleConfig gates the raw SQL console. It is off unless set here and
// requested on the command line.
type ConsoleConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// TaxConfig rates are fractions, e.g. 0.24.
type TaxConfig struct {
	FederalRate float64 `json:"federal_rate" yaml:"federal_rate"`
	StateRate   float64 `json:"state_rate" yaml:"state_rate"`
}

// Environment variables that override file values.
const (
	EnvAlphaVantageKey = "ALPHAVANTAGE_API_KEY"
	EnvFMPKey          = "FMP_API_KEY"
	EnvDatabase        = "TRADEBOOK_DB"
	EnvLogLevel        = "TRADEBOOK_LOG_LEVEL"
)

// LoadFromFile loads configuration from a YAML or JSON file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads path if it exists (defaults otherwise), then a .env file and
// the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadFromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with any set environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAlphaVantageKey); v != "" {
		c.Enrich.AlphaVantageKey = v
	}
	if v := os.Getenv(EnvFMPKey); v != "" {
		c.Enrich.FMPKey = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Enrich.Provider {
	case "", "none", "alphavantage", "fmp":
	default:
		return fmt.Errorf("enrich.provider must be 'alphavantage', 'fmp' or 'none'")
	}
	if c.Enrich.RequestsPerSecond < 0 {
		return fmt.Errorf("enrich.requests_per_second must not be negative")
	}
	if c.Enrich.DailyBudget < 0 {
		return fmt.Errorf("enrich.daily_budget must not be negative")
	}
	if c.Enrich.Schedule != "" {
		if _, err := cron.ParseStandard(c.Enrich.Schedule); err != nil {
			return fmt.Errorf("enrich.schedule: %w", err)
		}
	}
	if c.Tax.FederalRate < 0 || c.Tax.FederalRate >= 1 {
		return fmt.Errorf("tax.federal_rate must be between 0 and 1")
	}
	if c.Tax.StateRate < 0 || c.Tax.StateRate >= 1 {
		return fmt.Errorf("tax.state_rate must be between 0 and 1")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "./trades.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Enrich: EnrichConfig{
			Provider:          "alphavantage",
			RequestsPerSecond: 2,
			Schedule:          "30 16 * * 1-5",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:*"},
		},
		Tax: TaxConfig{
			FederalRate: 0.24,
			StateRate:   0.0549,
		},
	}
}
