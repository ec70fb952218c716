package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

// Config represents the complete journal configuration
type Config struct {
	Import      ImportConfig     `json:"import" yaml:"import"`
	Instruments []market.Rule    `json:"instruments,omitempty" yaml:"instruments,omitempty"`
	Journal     JournalConfig    `json:"journal" yaml:"journal"`
	Log         LogConfig        `json:"log" yaml:"log"`
	MarketData  MarketDataConfig `json:"market_data" yaml:"market_data"`
	Server      ServerConfig     `json:"server" yaml:"server"`
}

// ImportConfig controls how broker execution files are read
type ImportConfig struct {
	Timezone       string `json:"timezone" yaml:"timezone"`         // IANA name or "Local"
	GroupWindow    string `json:"group_window" yaml:"group_window"` // e.g. "2s"
	DefaultAccount string `json:"default_account" yaml:"default_account"`
	SourceLabel    string `json:"source_label" yaml:"source_label"`
}

// Location resolves Timezone. An empty value means Local.
func (ic ImportConfig) Location() (*time.Location, error) {
	if ic.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(ic.Timezone)
}

// Window converts GroupWindow to a duration. An empty value means 2s.
func (ic ImportConfig) Window() (time.Duration, error) {
	if ic.GroupWindow == "" {
		return 2 * time.Second, nil
	}
	return time.ParseDuration(ic.GroupWindow)
}

// JournalConfig selects the trade store
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "json", "sqlite" or "postgres"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Options converts to journal.Options.
func (jc JournalConfig) Options() journal.Options {
	return journal.Options{Type: jc.Type, Path: jc.Path, DBPath: jc.DBPath, DSN: jc.DSN}
}

// LogConfig contains logging parameters
type LogConfig struct {
	Level   string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format  string `json:"format" yaml:"format"` // text or json
	Tracing bool   `json:"tracing" yaml:"tracing"`
}

// MarketDataConfig points at the bar provider used for charts
type MarketDataConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ServerConfig contains HTTP service parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path, or returns the defaults with env overrides when path is
// empty.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.ApplyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

// ApplyEnv overrides file values from JOURNAL_DSN, MARKET_DATA_API_KEY,
// LOG_LEVEL and LOG_FORMAT. Setting JOURNAL_DSN also selects postgres.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("JOURNAL_DSN"); v != "" {
		c.Journal.DSN = v
		c.Journal.Type = journal.TypePostgres
	}
	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Table returns the configured multiplier rules, or the built-in table.
func (c *Config) Table() market.Table {
	if len(c.Instruments) == 0 {
		return market.DefaultTable
	}
	return market.Table(c.Instruments)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Import.Location(); err != nil {
		return fmt.Errorf("import.timezone: %w", err)
	}
	w, err := c.Import.Window()
	if err != nil {
		return fmt.Errorf("import.group_window: %w", err)
	}
	if w <= 0 {
		return fmt.Errorf("import.group_window must be positive")
	}
	if strings.TrimSpace(c.Import.DefaultAccount) == "" {
		return fmt.Errorf("import.default_account is required")
	}
	if err := c.Table().Validate(); err != nil {
		return fmt.Errorf("instruments: %w", err)
	}

	switch c.Journal.Type {
	case journal.TypeJSON:
		if c.Journal.Path == "" {
			return fmt.Errorf("journal path required for json type")
		}
	case journal.TypeSQLite:
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case journal.TypePostgres:
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal dsn required for postgres type")
		}
	default:
		return fmt.Errorf("journal.type must be 'json', 'sqlite' or 'postgres'")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Timezone:       "Local",
			GroupWindow:    "2s",
			DefaultAccount: "Unknown Account",
			SourceLabel:    "NinjaTrader",
		},
		Journal: JournalConfig{
			Type: journal.TypeJSON,
			Path: "./trades.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		MarketData: MarketDataConfig{
			BaseURL: "https://api.polygon.io",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
