package config

import (
	"fmt"
	"strings"
)

// Validate rejects configs that would fail later when applied.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, err := cfg.HTTP.Timeouts(); err != nil {
		return err
	}
	if cfg.HTTP.RatePerSec < 0 {
		return fmt.Errorf("http.rate_per_sec must be >= 0")
	}
	if cfg.HTTP.Burst < 0 {
		return fmt.Errorf("http.burst must be >= 0")
	}
	if cfg.HTTP.Enabled && strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required when http.enabled is true")
	}
	return nil
}
