package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var knownColors = map[string]struct{}{
	"red":     {},
	"green":   {},
	"yellow":  {},
	"blue":    {},
	"magenta": {},
	"cyan":    {},
	"orange":  {},
	"none":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("store.sqlite_path must be set when store.backend is sqlite")
		}
	case BackendRedis:
		if !strings.HasPrefix(c.Store.RedisURL, "redis://") && !strings.HasPrefix(c.Store.RedisURL, "rediss://") {
			return fmt.Errorf("store.redis_url must use the redis:// or rediss:// scheme, got %q", c.Store.RedisURL)
		}
		if c.Store.RedisDB < 0 {
			return errors.New("store.redis_db must be zero or greater")
		}
	default:
		return fmt.Errorf("store.backend: unsupported value %q (expected %q or %q)", c.Store.Backend, BackendSQLite, BackendRedis)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateDisplay() error {
	statuses := make([]string, 0, len(c.Display.StatusColors))
	for status := range c.Display.StatusColors {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		color := c.Display.StatusColors[status]
		if _, ok := knownColors[color]; !ok {
			return fmt.Errorf("display.status_colors.%s: unknown color %q", status, color)
		}
	}
	return nil
}
