// Package config loads the binding engine's startup configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mstian06/roboguice/logging"
)

// Config is the engine's startup configuration.
type Config struct {
	Usage   UsageConfig       `yaml:"usage"`
	Lookup  map[string]string `yaml:"lookup"`
	Logging logging.Config    `yaml:"logging"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// UsageConfig locates the usage registry written by the class scanner.
type UsageConfig struct {
	// RegistryFile is a YAML file listing used type names. Empty disables filtering.
	RegistryFile string `yaml:"registryFile"`
	// Disabled turns filtering off even when RegistryFile is set.
	Disabled bool `yaml:"disabled"`
}

// MetricsConfig toggles Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Lookup:  map[string]string{},
		Logging: *logging.DefaultConfig(),
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for typeName, key := range c.Lookup {
		if typeName == "" {
			return fmt.Errorf("lookup: empty type name for key %q", key)
		}
		if key == "" {
			return fmt.Errorf("lookup: empty key for type %s", typeName)
		}
	}
	return nil
}

// Loader handles loading configuration from various sources
type Loader struct {
	// ConfigFile is the path to the YAML configuration file
	ConfigFile string
	// EnvPrefix is the prefix for environment variables (defaults to "ROBOGUICE")
	EnvPrefix string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		EnvPrefix: "ROBOGUICE",
	}
}

// WithConfigFile sets the configuration file path
func (l *Loader) WithConfigFile(path string) *Loader {
	l.ConfigFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.EnvPrefix = prefix
	return l
}

// Load loads configuration from all sources in priority order:
// 1. Default configuration
// 2. Configuration file (if specified)
// 3. Environment variables
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	if l.ConfigFile != "" {
		if err := l.loadFromFile(config); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	l.loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file
func (l *Loader) loadFromFile(config *Config) error {
	data, err := os.ReadFile(l.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.ConfigFile, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config file: %w", err)
	}
	if config.Lookup == nil {
		config.Lookup = map[string]string{}
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (l *Loader) loadFromEnv(config *Config) {
	if val := l.getEnv("USAGE_REGISTRY_FILE"); val != "" {
		config.Usage.RegistryFile = val
	}
	if val := l.getEnv("USAGE_DISABLED"); val != "" {
		config.Usage.Disabled = parseBool(val, config.Usage.Disabled)
	}
	if val := l.getEnv("LOGGING_LEVEL"); val != "" {
		config.Logging.Level = val
	}
	if val := l.getEnv("LOGGING_FORMAT"); val != "" {
		config.Logging.Format = val
	}
	if val := l.getEnv("METRICS_ENABLED"); val != "" {
		config.Metrics.Enabled = parseBool(val, config.Metrics.Enabled)
	}
}

// getEnv gets an environment variable with the configured prefix
func (l *Loader) getEnv(key string) string {
	return os.Getenv(l.EnvPrefix + "_" + key)
}

// parseBool parses a boolean string, returning fallback on error
func parseBool(val string, fallback bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return fallback
	}
}

type usageFile struct {
	Types []string `yaml:"types"`
}

// ReadUsageFile reads the type names listed under "types" in a usage registry file.
func ReadUsageFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage registry %s: %w", path, err)
	}
	var f usageFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse usage registry %s: %w", path, err)
	}
	return f.Types, nil
}
