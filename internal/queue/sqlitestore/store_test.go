package sqlitestore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"qaueue/internal/identity"
	"qaueue/internal/queue"
	"qaueue/internal/queue/sqlitestore"
	"qaueue/internal/testsupport"
)

func prURL(n int) string {
	return fmt.Sprintf("https://github.com/acme/widgets/pull/%d", n)
}

func seed(t *testing.T, records *queue.Records, count int) []string {
	t.Helper()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		item, position, err := records.Create(context.Background(), prURL(i+1), "")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if position != i {
			t.Fatalf("expected position %d, got %d", i, position)
		}
		ids = append(ids, item.ID)
	}
	return ids
}

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := sqlitestore.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	records := queue.NewRecords(store)
	ids := seed(t, records, 2)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	order, err := reopened.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(order) != 2 || order[0] != ids[0] || order[1] != ids[1] {
		t.Fatalf("unexpected order after reopen: %v", order)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	_ = store.Close()

	db, err := sql.Open("sqlite", cfg.Store.SQLitePath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := sqlitestore.Open(context.Background(), cfg); !errors.Is(err, sqlitestore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestCreateStoresRecordAndQueues(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	ctx := context.Background()

	url := "https://github.com/acme/release-tools/pull/8"
	item, position, err := records.Create(ctx, url, "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if position != 0 {
		t.Fatalf("expected position 0, got %d", position)
	}
	if item.ID != identity.Digest(url) || item.URL != url {
		t.Fatalf("unexpected identity: %#v", item)
	}
	if item.Type != identity.TypeGitHubPullRequest || item.Status != queue.StatusQueued {
		t.Fatalf("unexpected type/status: %#v", item)
	}
	if item.Name != "Release Tools #8" {
		t.Fatalf("unexpected default name %q", item.Name)
	}
	if item.CreatedAt.IsZero() || item.ReleasedAt != nil {
		t.Fatalf("unexpected timestamps: %#v", item)
	}

	byURL, err := records.GetByURL(ctx, url)
	if err != nil || byURL == nil || byURL.ID != item.ID {
		t.Fatalf("GetByURL mismatch: %#v %v", byURL, err)
	}

	if _, _, err := records.Create(ctx, url, "again"); !errors.Is(err, queue.ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}
	order, _ := store.Snapshot(ctx)
	if len(order) != 1 {
		t.Fatalf("duplicate add must not touch the queue: %v", order)
	}
}

func TestCreateRejectsUnsupportedContent(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)

	_, _, err := records.Create(context.Background(), "https://example.com/not-a-pr", "")
	if !errors.Is(err, queue.ErrUnsupportedContent) {
		t.Fatalf("expected ErrUnsupportedContent, got %v", err)
	}
}

func TestGetByIndexWrapsNegative(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	ids := seed(t, records, 3)
	ctx := context.Background()

	cases := []struct {
		index int
		want  string
	}{
		{0, ids[0]},
		{2, ids[2]},
		{-1, ids[2]},
		{-3, ids[0]},
		{3, ""},
		{-4, ""},
	}
	for _, tc := range cases {
		item, err := records.GetByIndex(ctx, tc.index)
		if err != nil {
			t.Fatalf("GetByIndex(%d) failed: %v", tc.index, err)
		}
		got := ""
		if item != nil {
			got = item.ID
		}
		if got != tc.want {
			t.Fatalf("GetByIndex(%d) = %q, want %q", tc.index, got, tc.want)
		}
	}
}

func TestMoveFollowsPlacementRules(t *testing.T) {
	cases := []struct {
		name   string
		from   int
		target int
		want   []int
	}{
		{"to head", 2, 0, []int{2, 0, 1, 3}},
		{"to tail", 0, 3, []int{1, 2, 3, 0}},
		{"negative tail", 1, -1, []int{0, 2, 3, 1}},
		{"downward interior", 0, 2, []int{1, 2, 0, 3}},
		{"upward interior", 3, 1, []int{0, 1, 3, 2}},
		{"same index", 1, 1, []int{0, 1, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
			ids := seed(t, queue.NewRecords(store), 4)
			sequence := queue.NewSequence(store)
			ctx := context.Background()

			if err := sequence.MoveToIndex(ctx, ids[tc.from], tc.target, false); err != nil {
				t.Fatalf("MoveToIndex failed: %v", err)
			}
			order, err := sequence.Snapshot(ctx)
			if err != nil {
				t.Fatalf("Snapshot failed: %v", err)
			}
			for i, idx := range tc.want {
				if order[i] != ids[idx] {
					t.Fatalf("position %d: got %s want %s (order %v)", i, order[i], ids[idx], order)
				}
			}
			position, ok, err := sequence.IndexOf(ctx, ids[tc.from])
			if err != nil || !ok {
				t.Fatalf("IndexOf failed: %v %v", ok, err)
			}
			if order[position] != ids[tc.from] {
				t.Fatalf("stored position %d disagrees with order %v", position, order)
			}
		})
	}
}

func TestMoveErrors(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	sequence := queue.NewSequence(store)
	ids := seed(t, records, 3)
	ctx := context.Background()

	if err := sequence.MoveToIndex(ctx, identity.Digest(prURL(99)), 0, false); !errors.Is(err, queue.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	err := sequence.MoveToIndex(ctx, ids[0], 3, false)
	var rangeErr *queue.OutOfRangePriorityError
	if !errors.As(err, &rangeErr) || rangeErr.Length != 3 {
		t.Fatalf("expected OutOfRangePriorityError, got %v", err)
	}
	if !errors.Is(err, queue.ErrOutOfRangePriority) {
		t.Fatalf("expected sentinel match, got %v", err)
	}

	if _, err := records.SetStatus(ctx, ids[1], "staging"); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := sequence.MoveToIndex(ctx, ids[1], 0, false); !errors.Is(err, queue.ErrItemNotQueued) {
		t.Fatalf("expected ErrItemNotQueued, got %v", err)
	}
	if err := sequence.MoveToIndex(ctx, ids[1], 0, true); err != nil {
		t.Fatalf("forced move failed: %v", err)
	}

	if _, err := records.SetStatus(ctx, ids[2], queue.StatusReleased); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := sequence.MoveToIndex(ctx, ids[2], 0, true); !errors.Is(err, queue.ErrItemNotQueued) {
		t.Fatalf("expected ErrItemNotQueued for dequeued item, got %v", err)
	}
}

func TestReleaseDequeuesAndStamps(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	ids := seed(t, records, 3)
	ctx := context.Background()

	item, err := records.SetStatus(ctx, ids[1], queue.StatusReleased)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if item.Status != queue.StatusReleased || item.ReleasedAt == nil {
		t.Fatalf("expected released item with timestamp, got %#v", item)
	}
	order, _ := store.Snapshot(ctx)
	if len(order) != 2 || order[0] != ids[0] || order[1] != ids[2] {
		t.Fatalf("unexpected order after release: %v", order)
	}
	if position, ok, _ := store.IndexOf(ctx, ids[2]); !ok || position != 1 {
		t.Fatalf("expected positions to stay dense, got %d %v", position, ok)
	}

	stats, err := records.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Queued != 2 || stats.ByStatus[queue.StatusReleased] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	if _, err := records.SetStatus(ctx, identity.Digest(prURL(99)), "staging"); !errors.Is(err, queue.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestRepeatedReleaseKeepsReleasedAt(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	ids := seed(t, records, 1)
	ctx := context.Background()

	first, err := records.SetStatus(ctx, ids[0], queue.StatusReleased)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := records.SetStatus(ctx, ids[0], queue.StatusReleased)
	if err != nil {
		t.Fatalf("second SetStatus failed: %v", err)
	}
	if first.ReleasedAt == nil || second.ReleasedAt == nil || !second.ReleasedAt.Equal(*first.ReleasedAt) {
		t.Fatalf("expected released_at to stay %v, got %v", first.ReleasedAt, second.ReleasedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, got %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestPendingItemsJoinsRecordsInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	records := queue.NewRecords(store)
	ids := seed(t, records, 3)
	ctx := context.Background()

	db, err := sql.Open("sqlite", "file:"+cfg.Store.SQLitePath+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	dangling := identity.Digest(prURL(42))
	if _, err := db.Exec(`INSERT INTO queue_entries (item_id, position) VALUES (?, 3)`, dangling); err != nil {
		t.Fatalf("insert dangling entry: %v", err)
	}

	entries, err := records.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i, id := range ids {
		entry := entries[i]
		if entry.ID != id || entry.Position != i || entry.Item == nil || entry.Item.URL != prURL(i+1) {
			t.Fatalf("unexpected entry %d: %#v", i, entry)
		}
	}
	if entries[3].ID != dangling || entries[3].Item != nil {
		t.Fatalf("expected dangling entry without record, got %#v", entries[3])
	}
}

func TestUpdateMergesFields(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	ids := seed(t, records, 1)
	ctx := context.Background()

	updated, err := records.Update(ctx, &queue.Item{ID: ids[0], Name: "Renamed"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Renamed" || updated.Status != queue.StatusQueued || updated.URL != prURL(1) {
		t.Fatalf("unexpected merged record: %#v", updated)
	}

	if _, err := records.Update(ctx, &queue.Item{ID: identity.Digest(prURL(42)), Name: "x"}); !errors.Is(err, queue.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestRemoveDeletesRecordAndEntry(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	ids := seed(t, records, 2)
	ctx := context.Background()

	item, _ := records.Get(ctx, ids[0])
	if err := records.Remove(ctx, item); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := records.Exists(ctx, ids[0]); exists {
		t.Fatal("expected record to be deleted")
	}
	order, _ := store.Snapshot(ctx)
	if len(order) != 1 || order[0] != ids[1] {
		t.Fatalf("unexpected order after remove: %v", order)
	}
	if err := records.Remove(ctx, item); !errors.Is(err, queue.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound on second remove, got %v", err)
	}
}

func TestAppendIfAbsentIsIdempotent(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	sequence := queue.NewSequence(store)
	ids := seed(t, records, 2)
	ctx := context.Background()

	if err := sequence.Remove(ctx, ids[0]); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := sequence.Remove(ctx, ids[0]); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
	position, err := sequence.AppendIfAbsent(ctx, ids[0])
	if err != nil || position != 1 {
		t.Fatalf("AppendIfAbsent = %d, %v", position, err)
	}
	position, err = sequence.AppendIfAbsent(ctx, ids[0])
	if err != nil || position != 1 {
		t.Fatalf("repeat AppendIfAbsent = %d, %v", position, err)
	}
}

func TestConcurrentDuplicateCreateStoresOnce(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	records := queue.NewRecords(store)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := records.Create(ctx, prURL(7), "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, queue.ErrDuplicateItem):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || dupes != workers-1 {
		t.Fatalf("expected exactly one success, got %d successes and %d duplicates", successes, dupes)
	}
	order, _ := store.Snapshot(ctx)
	if len(order) != 1 {
		t.Fatalf("expected single queue entry, got %v", order)
	}
}

func TestHealthReportsCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	seed(t, queue.NewRecords(store), 2)

	health, err := store.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Backend != sqlitestore.BackendName || health.Location != cfg.Store.SQLitePath {
		t.Fatalf("unexpected identity: %#v", health)
	}
	if !health.Reachable || !health.Writable || !health.IntegrityOK {
		t.Fatalf("expected healthy store, got %#v", health)
	}
	if health.Items != 2 || health.QueueLength != 2 {
		t.Fatalf("unexpected counts: %#v", health)
	}
}
