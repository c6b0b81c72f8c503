// Package config loads CLI defaults from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds defaults applied to every request the CLI sends. Pointer
// booleans distinguish "unset" from an explicit false.
type Config struct {
	Timeout         string            `yaml:"timeout,omitempty"` // e.g. "1500ms", "2s"
	FollowRedirects *bool             `yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `yaml:"validateSSL,omitempty"`
	EnforceTLS12    bool              `yaml:"enforceTLS12,omitempty"`
	Proxy           string            `yaml:"proxy,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty"`
	HistoryPath     string            `yaml:"historyPath,omitempty"`
	NoColor         *bool             `yaml:"noColor,omitempty"`
}

// Filenames lists the config files searched for, in order.
var Filenames = []string{
	".restcall.yaml",
	".restcall.yml",
	"restcall.yaml",
	"restcall.yml",
}

func DefaultConfig() *Config {
	return &Config{}
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects defaults to true.
func (c *Config) GetFollowRedirects() bool { return getBool(c.FollowRedirects, true) }

// GetValidateSSL defaults to true.
func (c *Config) GetValidateSSL() bool { return getBool(c.ValidateSSL, true) }

// GetNoColor defaults to false.
func (c *Config) GetNoColor() bool { return getBool(c.NoColor, false) }

// GetTimeout parses the timeout string; zero when unset, an error when
// unparseable.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// Load reads configuration from path, or searches the current directory
// when path is empty. A missing config file yields defaults, not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFromFile(path)
	}
	return FindAndLoad(".")
}

// FindAndLoad searches dir for a config file.
func FindAndLoad(dir string) (*Config, error) {
	for _, filename := range Filenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}
