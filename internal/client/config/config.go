package config

import (
	"fmt"
	"time"
)

// Output formats accepted in Config.Output.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds runtime settings for the inventory CLI.
//
// Fields:
//   - ServerURL: base URL of the inventory HTTP API, without the /api suffix.
//   - Timeout: per-request timeout of the HTTP client.
//   - Output: rendering of command results, "json" or "yaml".
type Config struct {
	ServerURL string
	Timeout   time.Duration
	Output    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.Timeout = 10 * time.Second
	c.Output = OutputJSON
}

// Validate rejects an unknown output format and a non-positive timeout.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// LoadConfig constructs a Config from defaults, the environment and, when
// path is not empty, the JSON file at path. Later sources take precedence
// over earlier ones.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
