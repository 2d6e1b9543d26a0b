// Package config provides configuration loading for the nova CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	nova "github.com/sodle/nova-go"
)

// FileName is the name of the CLI configuration file, looked up in the
// current directory first and the home directory second.
const FileName = ".nova.yaml"

// Config represents the CLI configuration.
type Config struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	BaseURL        string `yaml:"base_url"`
	APIVersion     string `yaml:"api_version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PageSize       int    `yaml:"page_size"`
	Debug          bool   `yaml:"debug"`
}

// Load reads the configuration file and applies environment overrides.
// A missing file is not an error; environment variables alone can carry
// the credentials.
func Load() (*Config, error) {
	cfg := &Config{}

	path, err := findConfigFile()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// LoadFile reads the configuration from an explicit path and applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyEnv()

	return cfg, nil
}

// findConfigFile returns the first config file found, or "" if none.
func findConfigFile() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory is fine; the cwd lookup already failed.
		return "", nil
	}

	path := filepath.Join(home, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	return "", nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(nova.EnvClientID); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(nova.EnvClientSecret); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv(nova.EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(nova.EnvAPIVersion); v != "" {
		c.APIVersion = v
	}
	if v := os.Getenv(nova.EnvDebug); v == "true" || v == "1" {
		c.Debug = true
	}
}

// Validate checks that the configuration carries credentials.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("client_id is required (config file or " + nova.EnvClientID + ")")
	}
	if c.ClientSecret == "" {
		return errors.New("client_secret is required (config file or " + nova.EnvClientSecret + ")")
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds cannot be negative")
	}
	if c.PageSize < 0 {
		return errors.New("page_size cannot be negative")
	}
	return nil
}

// ClientOptions translates the CLI configuration into client options.
func (c *Config) ClientOptions() []nova.ConfigOption {
	var opts []nova.ConfigOption

	if c.BaseURL != "" {
		opts = append(opts, nova.WithBaseURL(c.BaseURL))
	}
	if c.APIVersion != "" {
		opts = append(opts, nova.WithAPIVersion(c.APIVersion))
	}
	if c.TimeoutSeconds > 0 {
		opts = append(opts, nova.WithTimeout(time.Duration(c.TimeoutSeconds)*time.Second))
	}
	if c.PageSize > 0 {
		opts = append(opts, nova.WithSearchPageSize(c.PageSize))
	}
	if c.Debug {
		opts = append(opts, nova.WithDebug(true))
	}

	return opts
}

// NewClient builds a nova client from the configuration.
func (c *Config) NewClient() (*nova.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return nova.New(c.ClientID, c.ClientSecret, c.ClientOptions()...)
}
