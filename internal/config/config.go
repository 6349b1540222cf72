// Package config handles configuration loading and validation for stringgraph.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".stringgraph"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// EnvPrefix prefixes environment overrides, e.g. STRINGGRAPH_LOG_LEVEL.
	EnvPrefix = "STRINGGRAPH"
)

// Config holds all configuration for stringgraph.
type Config struct {
	// Store selects where graphs are read and written by default.
	Store StoreConfig `mapstructure:"store" yaml:"store"`
	// Export holds defaults for the DOT and dump exporters.
	Export ExportConfig `mapstructure:"export" yaml:"export"`
	// Log configures the slog logger.
	Log LogConfig `mapstructure:"log" yaml:"log"`
	// Watch configures the watch command.
	Watch WatchConfig `mapstructure:"watch" yaml:"watch"`
	// Metrics configures the prometheus endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// StoreConfig holds graph storage configuration.
type StoreConfig struct {
	// Location is the default graph location: a path, a file:// URI or a
	// badger://dir?graph=name URI.
	Location string `mapstructure:"location" yaml:"location"`
	// CatalogDir is the BadgerDB directory used by the catalog commands.
	CatalogDir string `mapstructure:"catalog_dir" yaml:"catalog_dir"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	// GraphName is the name written into DOT output.
	GraphName string `mapstructure:"graph_name" yaml:"graph_name"`
	// SortEdges orders DOT edges by from, label and to.
	SortEdges bool `mapstructure:"sort_edges" yaml:"sort_edges"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level"`
	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format"`
}

// WatchConfig holds file watching configuration.
type WatchConfig struct {
	// Debounce is how long a file must stay quiet before it is reloaded.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// MetricsConfig holds the metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the listen address of /metrics; empty disables it.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Load loads configuration from the file named by the global "config_file"
// setting (set from the --config flag), or from .stringgraph.yaml in the
// current directory.
func Load() (*Config, error) {
	return LoadFile(viper.GetViper().GetString("config_file"))
}

// LoadFile loads configuration from path, environment variables, and
// defaults. An empty path searches the current directory for the default
// config file, which may be missing.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got %q", c.Log.Format)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.Store.Location != "" {
		scheme, _, ok := strings.Cut(c.Store.Location, "://")
		if ok && scheme != "file" && scheme != "badger" {
			return fmt.Errorf("store location scheme must be 'file' or 'badger', got %q", scheme)
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.location", "")
	v.SetDefault("store.catalog_dir", ".stringgraph/catalog")

	v.SetDefault("export.graph_name", "")
	v.SetDefault("export.sort_edges", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("watch.debounce", 250*time.Millisecond)

	v.SetDefault("metrics.addr", "")
}
