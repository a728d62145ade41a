// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"landed-cost/core/input"
	"landed-cost/core/landed"
	"landed-cost/core/output"
	"landed-cost/internal/errors"
	"landed-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Defaults are applied when a shipment omits a value
	Defaults DefaultsConfig `json:"defaults" yaml:"defaults"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// Locale is the BCP 47 tag used to format numbers
	Locale string `json:"locale" yaml:"locale"`

	// Currency is the ISO 4217 code shown next to amounts
	Currency string `json:"currency" yaml:"currency"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeoutSeconds bounds reading a request
	ReadTimeoutSeconds int `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing a response
	WriteTimeoutSeconds int `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`

	// MaxBodyBytes caps request bodies
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`

	// MetricsEnabled exposes GET /metrics
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`

	// WatchConfig reloads logging and output settings when the file changes
	WatchConfig bool `json:"watch_config" yaml:"watch_config"`
}

// DefaultsConfig contains evaluation defaults
type DefaultsConfig struct {
	// RiskModel is used when a shipment names none
	RiskModel string `json:"risk_model" yaml:"risk_model"`

	// ExchangeSensitivity is the νe multiplier used when a shipment gives none
	ExchangeSensitivity float64 `json:"exchange_sensitivity" yaml:"exchange_sensitivity"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Output: OutputConfig{
			DefaultFormat: string(output.FormatCLI),
			Locale:        "es-CO",
			Currency:      "USD",
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
			MaxBodyBytes:        1 << 20,
			MetricsEnabled:      true,
			WatchConfig:         false,
		},
		Defaults: DefaultsConfig{
			RiskModel:           string(landed.DefaultModel),
			ExchangeSensitivity: 1,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns $HOME/.landed-cost.yaml
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".landed-cost.yaml")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads configuration from a JSON or YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("read "+path, err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Config("parse "+path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if _, err := output.NewFormatter(output.Format(c.Output.DefaultFormat), nil); err != nil {
		return errors.Config("output.default_format", err)
	}
	if _, err := output.NewCurrencyFormatter(c.Output.Locale, c.Output.Currency); err != nil {
		return errors.Config("output locale/currency", err)
	}
	if c.Defaults.RiskModel != "" && !landed.RiskModel(c.Defaults.RiskModel).Valid() {
		return errors.Config("defaults.risk_model", errors.InvalidField(landed.FieldRiskModel,
			"one of deterministic|normal|lognormal", c.Defaults.RiskModel))
	}
	if c.Defaults.ExchangeSensitivity < 0 {
		return errors.Config("defaults.exchange_sensitivity", errors.InvalidField(landed.FieldExchangeSensitivity,
			">= 0", c.Defaults.ExchangeSensitivity))
	}
	return nil
}

// InputDefaults converts the defaults section for the input boundary
func (c *Config) InputDefaults() input.Defaults {
	def := input.StandardDefaults()
	if c.Defaults.RiskModel != "" {
		def.RiskModel = landed.RiskModel(c.Defaults.RiskModel)
	}
	def.ExchangeSensitivity = decimal.NewFromFloat(c.Defaults.ExchangeSensitivity)
	return def
}

// Global configuration instance
var (
	mu           sync.RWMutex
	globalConfig = Default()
)

// Get returns the global configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = config
}
