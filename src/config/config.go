// Package config loads CLI configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
	Chart   ChartConfig   `mapstructure:"chart"   yaml:"chart"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig holds World Bank API settings.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Source  int    `mapstructure:"source"   yaml:"source"` // 0 means unset
}

// OutputConfig holds data export settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "csv", "json", "xlsx"
}

// ChartConfig holds chart rendering defaults.
type ChartConfig struct {
	Width     int     `mapstructure:"width"      yaml:"width"`
	Height    int     `mapstructure:"height"     yaml:"height"`
	Locale    string  `mapstructure:"locale"     yaml:"locale"`
	Legend    string  `mapstructure:"legend"     yaml:"legend"` // right, top, bottom, inside, hidden
	Kind      string  `mapstructure:"kind"       yaml:"kind"`
	LoessSpan float64 `mapstructure:"loess_span" yaml:"loess_span"`
	Style     string  `mapstructure:"style"      yaml:"style"` // default, country-hue, country-palette
	Title     string  `mapstructure:"title"      yaml:"title"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Load reads configuration from the default search path and environment.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.wbfetch/config.yaml
//
// Environment variables override file values, WBFETCH_<SECTION>_<KEY>,
// e.g. WBFETCH_API_BASE_URL.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".wbfetch"))

	v.SetEnvPrefix("WBFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("WBFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.worldbank.org/v2")
	v.SetDefault("api.source", 0)

	v.SetDefault("output.format", "csv")

	v.SetDefault("chart.width", 1000)
	v.SetDefault("chart.height", 600)
	v.SetDefault("chart.locale", "en")
	v.SetDefault("chart.legend", "right")
	v.SetDefault("chart.kind", "line")
	v.SetDefault("chart.loess_span", 0.3)
	v.SetDefault("chart.style", "default")

	v.SetDefault("logging.level", "info")
}

func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}
