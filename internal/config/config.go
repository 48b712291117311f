// Package config holds the dentix CLI settings. Values come from flags,
// DENTIX_* environment variables and an optional config file, merged by viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultAPIURL       = "http://localhost:5000/api"
	DefaultOutputFormat = "table"
	EnvPrefix           = "DENTIX"
)

type Config struct {
	APIURL       string        `mapstructure:"api_url"`
	StateDir     string        `mapstructure:"state_dir"`
	OutputFormat string        `mapstructure:"output_format"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Verbose      bool          `mapstructure:"verbose"`
}

// Get returns what viper currently holds. Defaults are only present after
// Init has run.
func Get() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}

// DefaultStateDir is where the session files live unless configured.
func DefaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "dentix")
	}
	return ".dentix"
}

// Init registers the persistent flags and binds them, the environment and
// the config file into viper.
func Init(flags *pflag.FlagSet) error {
	flags.String("api-url", DefaultAPIURL, "Base URL of the DentixPro API")
	flags.String("state-dir", DefaultStateDir(), "Directory holding the stored session")
	flags.StringP("output-format", "o", DefaultOutputFormat, "Output format (table|json)")
	flags.Duration("timeout", 0, "Request timeout, 0 for none")
	flags.BoolP("verbose", "v", false, "Verbose output")

	for key, flag := range map[string]string{
		"api_url":       "api-url",
		"state_dir":     "state-dir",
		"output_format": "output-format",
		"timeout":       "timeout",
		"verbose":       "verbose",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(DefaultStateDir())
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	return nil
}

// Validate rejects settings the CLI cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url is required")
	}
	switch c.OutputFormat {
	case "", "table", "json":
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", c.OutputFormat)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
