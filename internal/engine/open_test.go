package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"qaueue/internal/config"
	"qaueue/internal/engine"
	"qaueue/internal/logging"
	"qaueue/internal/testsupport"
)

func TestOpenLogsOperationsWithCorrelationID(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLogFile())
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	logger, err := logging.NewFromConfig(cfg)
	require.NoError(t, err)

	e, err := engine.Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	item, _, err := e.AddItem(context.Background(), prURL(1), "")
	require.NoError(t, err)

	require.Equal(t, filepath.Join(testsupport.BaseDir(cfg), "logs", "qaueue.log"), cfg.Logging.File)
	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, `"msg":"item added"`)
	require.Contains(t, content, `"item_id":"`+item.ID+`"`)
	require.Contains(t, content, `"operation":"add_item"`)
	require.Contains(t, content, `"correlation_id":"`)
	require.True(t, strings.Contains(content, `"component":"engine"`), "expected component field in %s", content)
}

func TestOpenBackendRejectsUnknownBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Store.Backend = "mongo"

	_, err := engine.OpenBackend(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "store.backend")
}

func TestOpenBackendCreatesSQLiteFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	require.Equal(t, config.BackendSQLite, cfg.Store.Backend)

	backend, err := engine.OpenBackend(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	_, err = os.Stat(cfg.Store.SQLitePath)
	require.NoError(t, err)
}
