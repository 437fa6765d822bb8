package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"qaueue/internal/config"
	"qaueue/internal/queue"
)

func TestStatusCommandReportsHealthAndCounts(t *testing.T) {
	env := setupCLITestEnv(t)
	mustRunCLI(t, env, "add", prURL(1))
	mustRunCLI(t, env, "add", prURL(2))
	mustRunCLI(t, env, "add", prURL(3))
	mustRunCLI(t, env, "update", "0", "released")
	mustRunCLI(t, env, "update", "0", "integration")

	out := mustRunCLI(t, env, "status")
	requireContains(t, out, "== Store ==")
	requireContains(t, out, "[INFO] sqlite")
	requireContains(t, out, "[OK] yes")
	requireContains(t, out, "== Queue ==")
	requireContains(t, out, "released")
	requireContains(t, out, "integration")

	out = mustRunCLI(t, env, "--output", "json", "status")
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if view.Backend != "sqlite" || !view.Reachable || !view.Writable || !view.IntegrityOK {
		t.Fatalf("unexpected health: %+v", view)
	}
	if view.Items != 3 || view.QueueLength != 2 {
		t.Fatalf("unexpected counts: %+v", view)
	}
	if view.ByStatus["released"] != 1 || view.ByStatus["integration"] != 1 || view.ByStatus["queued"] != 1 {
		t.Fatalf("unexpected status counts: %v", view.ByStatus)
	}
}

func TestBuildStatusRowsOrdering(t *testing.T) {
	rows := buildStatusRows(map[string]int{
		"queued":      3,
		"staging":     1,
		"integration": 1,
		"released":    0,
	}, func(s string) string { return s })

	want := [][]string{{"queued", "3"}, {"integration", "1"}, {"staging", "1"}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), rows)
	}
	for i := range want {
		if rows[i][0] != want[i][0] || rows[i][1] != want[i][1] {
			t.Fatalf("row %d: got %v want %v", i, rows[i], want[i])
		}
	}
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Backend", statusError, "unreachable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Backend:", "[ERROR] unreachable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Backend", statusOK, "sqlite", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestColorStatusUsesConfiguredColors(t *testing.T) {
	cfg := config.Default()
	cfg.Display.StatusColors["staging"] = "none"

	if got := colorStatus(&cfg, "integration", true); got != ansiOrange+"integration"+ansiReset {
		t.Fatalf("expected orange integration, got %q", got)
	}
	if got := colorStatus(&cfg, "mystery", true); got != ansiBlue+"mystery"+ansiReset {
		t.Fatalf("expected fallback blue, got %q", got)
	}
	if got := colorStatus(&cfg, "staging", true); got != "staging" {
		t.Fatalf("expected uncolored staging, got %q", got)
	}
	if got := colorStatus(&cfg, "released", false); got != "released" {
		t.Fatalf("expected plain text without colorize, got %q", got)
	}
}

func TestShouldColorizeIgnoresBuffers(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers must not be colorized")
	}
}

func TestReportErrorJSONBody(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := fmt.Errorf("show: %w", queue.ErrItemNotFound)
	reportError(&stdout, &stderr, outputJSON, err)

	var body errorBody
	if decodeErr := json.Unmarshal(stdout.Bytes(), &body); decodeErr != nil {
		t.Fatalf("decode error body %q: %v", stdout.String(), decodeErr)
	}
	if body.Error.Kind != "not_found" {
		t.Fatalf("unexpected kind %q", body.Error.Kind)
	}
	requireContains(t, stderr.String(), "Error: show: item not found")

	stdout.Reset()
	stderr.Reset()
	reportError(&stdout, &stderr, outputTable, err)
	if stdout.Len() != 0 {
		t.Fatalf("table format should not write to stdout, got %q", stdout.String())
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{queue.ErrUnsupportedContent, 2},
		{queue.ErrInvalidStatus, 2},
		{queue.ErrItemNotFound, 3},
		{queue.ErrDuplicateItem, 4},
		{queue.ErrItemNotQueued, 5},
		{&queue.OutOfRangePriorityError{Index: 9, Length: 2}, 6},
		{queue.Unavailable("ping", errors.New("refused")), 7},
		{errors.New("boom"), 1},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
