// Package config loads modelprobe's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/germanamz/modelprobe/pkg/probe"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given explicitly.
const DefaultPath = "modelprobe.yaml"

// Provider kinds understood by the factory.
const (
	KindOpenAI    = "openai"
	KindOpenAISDK = "openai-sdk"
)

// Config is the top-level configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Probe    ProbeConfig    `yaml:"probe"`
	Log      LogConfig      `yaml:"log"`
}

// ProviderConfig selects and addresses the remote endpoint.
type ProviderConfig struct {
	Kind        string  `yaml:"kind"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	// Temperature is sent only when set; nil leaves the provider default.
	Temperature *float64 `yaml:"temperature"`
}

// ProbeConfig tunes the test request.
type ProbeConfig struct {
	Prompt    string `yaml:"prompt"`
	MaxTokens int    `yaml:"max_tokens"`
}

// LogConfig controls logrus output. An empty File logs to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Kind:      KindOpenAI,
			BaseURL:   probe.DefaultBaseURL,
			APIKeyEnv: probe.EnvAPIKey,
		},
		Probe: ProbeConfig{
			Prompt:    probe.Prompt,
			MaxTokens: probe.MaxOutputTokens,
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads a YAML file on top of Default. Environment variables referenced
// as ${VAR} or $VAR are expanded before parsing. When optional is true a
// missing file yields Default instead of an error.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: load: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()

	if c.Provider.Kind == "" {
		c.Provider.Kind = d.Provider.Kind
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = d.Provider.BaseURL
	}
	c.Provider.BaseURL = strings.TrimRight(c.Provider.BaseURL, "/")
	if c.Provider.APIKeyEnv == "" {
		c.Provider.APIKeyEnv = d.Provider.APIKeyEnv
	}
	if c.Probe.Prompt == "" {
		c.Probe.Prompt = d.Probe.Prompt
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	switch c.Provider.Kind {
	case KindOpenAI, KindOpenAISDK:
	default:
		return fmt.Errorf("config: provider: unknown kind %q (want %q or %q)", c.Provider.Kind, KindOpenAI, KindOpenAISDK)
	}

	if !strings.HasPrefix(c.Provider.BaseURL, "http://") && !strings.HasPrefix(c.Provider.BaseURL, "https://") {
		return fmt.Errorf("config: provider: base_url %q must be an http(s) URL", c.Provider.BaseURL)
	}

	if t := c.Provider.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("config: provider: temperature %v out of range [0, 2]", *t)
	}

	if c.Probe.MaxTokens <= 0 {
		return fmt.Errorf("config: probe: max_tokens must be positive, got %d", c.Probe.MaxTokens)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log: %w", err)
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return errors.New("config: log: max_size_mb and max_backups must not be negative")
	}

	return nil
}
