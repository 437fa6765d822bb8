package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeDisplay()
	c.normalizeTelemetry()
	return nil
}

func (c *Config) normalizeStore() error {
	if value, ok := os.LookupEnv("QAUEUE_BACKEND"); ok && strings.TrimSpace(value) != "" {
		c.Store.Backend = value
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultBackend
	}

	if value, ok := os.LookupEnv("QAUEUE_SQLITE_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Store.SQLitePath = value
	}
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = defaultSQLitePath
	}
	var err error
	if c.Store.SQLitePath, err = expandPath(strings.TrimSpace(c.Store.SQLitePath)); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}

	if value, ok := os.LookupEnv("REDIS_ADDRESS"); ok && strings.TrimSpace(value) != "" {
		c.Store.RedisURL = value
	}
	c.Store.RedisURL = strings.TrimSpace(c.Store.RedisURL)
	if c.Store.RedisURL == "" {
		c.Store.RedisURL = defaultRedisURL
	}
	if value, ok := os.LookupEnv("REDIS_DB"); ok && strings.TrimSpace(value) != "" {
		db, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Store.RedisDB = db
	}
	c.Store.RedisNamespace = strings.TrimSpace(c.Store.RedisNamespace)
	if c.Store.RedisNamespace == "" {
		c.Store.RedisNamespace = defaultRedisNamespace
	}
	if c.Store.TimeoutSeconds <= 0 {
		c.Store.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Store.RetryMaxElapsedSeconds < 0 {
		c.Store.RetryMaxElapsedSeconds = 0
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeDisplay() {
	colors := defaultStatusColors()
	for status, color := range c.Display.StatusColors {
		key := strings.ToLower(strings.TrimSpace(status))
		value := strings.ToLower(strings.TrimSpace(color))
		if key == "" || value == "" {
			continue
		}
		colors[key] = value
	}
	c.Display.StatusColors = colors
}

func (c *Config) normalizeTelemetry() {
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
}
