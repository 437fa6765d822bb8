package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"qaueue/internal/config"
	"qaueue/internal/engine"
	"qaueue/internal/logging"
	"qaueue/internal/queue"
)

type commandContext struct {
	configFlag   *string
	outputFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, outputFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		outputFlag:   outputFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("--log-level: %w", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) outputFormat() (string, error) {
	if c.outputFlag == nil {
		return outputTable, nil
	}
	format := strings.ToLower(strings.TrimSpace(*c.outputFlag))
	switch format {
	case "":
		return outputTable, nil
	case outputTable, outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected %s, %s, or %s)", format, outputTable, outputJSON, outputYAML)
	}
}

// withEngine opens the configured backend, runs fn, and closes the engine.
func (c *commandContext) withEngine(cmd *cobra.Command, fn func(*engine.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	var eng *engine.Engine
	err = c.retry(cmd.Context(), "open store", func() error {
		opened, openErr := engine.Open(cmd.Context(), cfg, logger)
		if openErr != nil {
			return openErr
		}
		eng = opened
		return nil
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := eng.Close(); closeErr != nil {
			logger.Warn("close store failed", logging.Error(closeErr))
		}
	}()
	return fn(eng)
}

// retry reruns op while it fails with ErrStoreUnavailable, up to
// store.retry_max_elapsed_seconds. Other errors return immediately.
func (c *commandContext) retry(ctx context.Context, what string, op func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	maxElapsed := cfg.RetryMaxElapsed()
	if maxElapsed <= 0 {
		return op()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = maxElapsed

	logger, _ := c.ensureLogger()
	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !errors.Is(err, queue.ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		if logger == nil {
			return
		}
		logging.WarnWithContext(logger, what+" failed; retrying", "store_retry",
			logging.Error(err),
			logging.Duration("wait", wait),
		)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
