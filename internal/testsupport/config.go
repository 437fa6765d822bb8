package testsupport

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"qaueue/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose SQLite database lives in a per-test temp
// directory. Options are applied in order.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Store.SQLitePath = filepath.Join(base, "data", "queue.db")
	cfgVal.Store.RetryMaxElapsedSeconds = 0
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithRedis switches the config to the redis backend at url under a
// namespace unique to the test.
func WithRedis(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = config.BackendRedis
		b.cfg.Store.RedisURL = url
		b.cfg.Store.RedisNamespace = fmt.Sprintf("qaueue_test_%d", time.Now().UnixNano())
	}
}

// WithLogFile routes logs to a file inside the temp directory.
func WithLogFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.File = filepath.Join(b.baseDir, "logs", "qaueue.log")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Store.SQLitePath))
}
