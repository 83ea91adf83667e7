package config

import (
	"fmt"
	"os"
	"time"
)

// parseEnv overlays non-empty INVENTORY_* variables onto cfg.
func parseEnv(cfg *Config) error {
	if v := os.Getenv("INVENTORY_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("INVENTORY_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("INVENTORY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INVENTORY_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return nil
}
