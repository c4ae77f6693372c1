package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses a Go duration string. Empty means 0; negative
// values are rejected. path is only used in error messages.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def substituted for 0.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// Timeouts holds the parsed HTTP server timeouts.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// Timeouts parses the HTTP timeouts, substituting defaults for omitted values.
func (c HTTPConfig) Timeouts() (Timeouts, error) {
	var (
		t   Timeouts
		err error
	)
	if t.Read, err = ParseDurationOrDefault("http.read_timeout", c.ReadTimeout, 5*time.Second); err != nil {
		return Timeouts{}, err
	}
	if t.Write, err = ParseDurationOrDefault("http.write_timeout", c.WriteTimeout, 10*time.Second); err != nil {
		return Timeouts{}, err
	}
	if t.Idle, err = ParseDurationOrDefault("http.idle_timeout", c.IdleTimeout, 60*time.Second); err != nil {
		return Timeouts{}, err
	}
	return t, nil
}
