//go:build integration

package redisstore_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qaueue/internal/identity"
	"qaueue/internal/queue"
	"qaueue/internal/queue/redisstore"
)

func getTestRedisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("QAUEUE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("QAUEUE_TEST_REDIS_URL not set, skipping Redis integration tests")
	}
	return url
}

func newTestStore(t *testing.T) *redisstore.Store {
	t.Helper()
	ns := fmt.Sprintf("qaueue-test-%d", time.Now().UnixNano())
	store, err := redisstore.New(context.Background(), getTestRedisURL(t), redisstore.WithNamespace(ns))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		order, _ := store.Snapshot(ctx)
		for _, id := range order {
			_, _ = store.DeleteItem(ctx, id)
		}
		_ = store.Close()
	})
	return store
}

func seed(t *testing.T, records *queue.Records, count int) []string {
	t.Helper()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		item, position, err := records.Create(context.Background(), fmt.Sprintf("https://github.com/acme/widgets/pull/%d", i+1), "")
		require.NoError(t, err)
		require.Equal(t, i, position)
		ids = append(ids, item.ID)
	}
	return ids
}

func TestRedisCreateAndDuplicate(t *testing.T) {
	store := newTestStore(t)
	records := queue.NewRecords(store)
	ctx := context.Background()

	ids := seed(t, records, 1)
	item, err := records.Get(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, identity.TypeGitHubPullRequest, item.Type)
	assert.Equal(t, "Widgets #1", item.Name)

	_, _, err = records.Create(ctx, "https://github.com/acme/widgets/pull/1", "")
	assert.ErrorIs(t, err, queue.ErrDuplicateItem)
}

func TestRedisMovePlacement(t *testing.T) {
	store := newTestStore(t)
	records := queue.NewRecords(store)
	sequence := queue.NewSequence(store)
	ids := seed(t, records, 4)
	ctx := context.Background()

	require.NoError(t, sequence.MoveToIndex(ctx, ids[3], 1, false))
	order, err := sequence.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[1], ids[3], ids[2]}, order)

	require.NoError(t, sequence.MoveToIndex(ctx, ids[2], 0, false))
	require.NoError(t, sequence.MoveToIndex(ctx, ids[0], -1, false))
	order, err = sequence.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[1], ids[3], ids[0]}, order)

	err = sequence.MoveToIndex(ctx, ids[0], 4, false)
	assert.ErrorIs(t, err, queue.ErrOutOfRangePriority)
	assert.EqualError(t, err, "invalid priority index 4: must be between 0 and 3, or between -1 and -4")
}

func TestRedisReleaseDequeues(t *testing.T) {
	store := newTestStore(t)
	records := queue.NewRecords(store)
	sequence := queue.NewSequence(store)
	ids := seed(t, records, 2)
	ctx := context.Background()

	item, err := records.SetStatus(ctx, ids[0], queue.StatusReleased)
	require.NoError(t, err)
	assert.NotNil(t, item.ReleasedAt)

	order, err := sequence.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1]}, order)
	assert.ErrorIs(t, sequence.MoveToIndex(ctx, ids[0], 0, true), queue.ErrItemNotQueued)

	health, err := store.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.IntegrityOK)
	assert.Equal(t, 2, health.Items)
	assert.Equal(t, 1, health.QueueLength)
}

func TestRedisConcurrentDuplicateCreate(t *testing.T) {
	store := newTestStore(t)
	records := queue.NewRecords(store)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := records.Create(ctx, "https://github.com/acme/widgets/pull/9", ""); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	order, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, order, 1)
}

func TestRedisRepeatedReleaseKeepsReleasedAt(t *testing.T) {
	store := newTestStore(t)
	records := queue.NewRecords(store)
	ids := seed(t, records, 1)
	ctx := context.Background()

	first, err := records.SetStatus(ctx, ids[0], queue.StatusReleased)
	require.NoError(t, err)
	require.NotNil(t, first.ReleasedAt)
	time.Sleep(2 * time.Millisecond)

	second, err := records.SetStatus(ctx, ids[0], queue.StatusReleased)
	require.NoError(t, err)
	require.NotNil(t, second.ReleasedAt)
	assert.True(t, second.ReleasedAt.Equal(*first.ReleasedAt))
}

func TestRedisPendingItemsReportsMissingRecords(t *testing.T) {
	url := getTestRedisURL(t)
	ns := fmt.Sprintf("qaueue-test-%d", time.Now().UnixNano())
	ctx := context.Background()
	store, err := redisstore.New(ctx, url, redisstore.WithNamespace(ns))
	require.NoError(t, err)
	records := queue.NewRecords(store)
	ids := seed(t, records, 2)

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	dangling := identity.Digest("https://github.com/acme/widgets/pull/42")
	require.NoError(t, client.RPush(ctx, ns+"_Q", dangling).Err())
	t.Cleanup(func() {
		_ = client.Del(context.Background(), ns+"_Q", ns+":item:"+ids[0], ns+":item:"+ids[1]).Err()
		_ = client.Close()
		_ = store.Close()
	})

	entries, err := records.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, id := range ids {
		assert.Equal(t, id, entries[i].ID)
		assert.Equal(t, i, entries[i].Position)
		require.NotNil(t, entries[i].Item)
		assert.Equal(t, queue.StatusQueued, entries[i].Item.Status)
	}
	assert.Equal(t, dangling, entries[2].ID)
	assert.Nil(t, entries[2].Item)
}
