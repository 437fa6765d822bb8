package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store selects and configures the persistent backend.
type Store struct {
	Backend                string `toml:"backend"`
	SQLitePath             string `toml:"sqlite_path"`
	RedisURL               string `toml:"redis_url"`
	RedisDB                int    `toml:"redis_db"`
	RedisNamespace         string `toml:"redis_namespace"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	RetryMaxElapsedSeconds int    `toml:"retry_max_elapsed_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Display contains presentation settings for the CLI.
type Display struct {
	// StatusColors maps a status to a color name. "*" is the fallback.
	StatusColors map[string]string `toml:"status_colors"`
}

// Telemetry toggles OpenTelemetry instrumentation.
type Telemetry struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
}

// Config encapsulates all configuration values for qaueue. It is loaded once
// at startup and passed explicitly to the components that need it.
type Config struct {
	Store     Store     `toml:"store"`
	Logging   Logging   `toml:"logging"`
	Display   Display   `toml:"display"`
	Telemetry Telemetry `toml:"telemetry"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/qaueue/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is read first; variables already set in the
// environment win.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("qaueue.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the SQLite backend and log file need.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath != "" {
		dirs = append(dirs, filepath.Dir(c.Store.SQLitePath))
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// OperationTimeout bounds a single store round trip.
func (c *Config) OperationTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// RetryMaxElapsed bounds how long callers keep retrying an unavailable store.
func (c *Config) RetryMaxElapsed() time.Duration {
	return time.Duration(c.Store.RetryMaxElapsedSeconds) * time.Second
}

// StatusColor returns the configured color name for status.
func (c *Config) StatusColor(status string) string {
	if color, ok := c.Display.StatusColors[strings.ToLower(status)]; ok {
		return color
	}
	return c.Display.StatusColors["*"]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
