//go:build integration

package engine_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"qaueue/internal/engine"
	"qaueue/internal/logging"
	"qaueue/internal/queue"
	"qaueue/internal/testsupport"
)

func TestRedisEngineReprioritize(t *testing.T) {
	url := os.Getenv("QAUEUE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("QAUEUE_TEST_REDIS_URL not set, skipping Redis integration tests")
	}
	ctx := context.Background()
	cfg := testsupport.NewConfig(t, testsupport.WithRedis(url))

	e, err := engine.Open(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		items, _ := e.ListPending(ctx)
		for _, item := range items {
			_ = e.RemoveItem(ctx, item.ID)
		}
		_ = e.Close()
	})

	ids := addItems(t, e, 4)
	require.NoError(t, e.Reprioritize(ctx, ids[2], 0, false))
	require.Equal(t, []string{ids[2], ids[0], ids[1], ids[3]}, pendingIDs(t, e))

	_, err = e.SetStatus(ctx, ids[0], "released")
	require.NoError(t, err)
	require.Equal(t, []string{ids[2], ids[1], ids[3]}, pendingIDs(t, e))

	err = e.Reprioritize(ctx, ids[0], 0, true)
	require.ErrorIs(t, err, queue.ErrItemNotQueued)

	_, _, err = e.AddItem(ctx, prURL(2), "")
	require.ErrorIs(t, err, queue.ErrDuplicateItem)
	require.NoError(t, e.RemoveItem(ctx, ids[0]))
}
