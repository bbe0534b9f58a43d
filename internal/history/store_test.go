package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cdzombak/plex-meta-migrator/internal/history"
)

func mustOpenStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordRunAssignsID(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	run, err := store.RecordRun(ctx, history.Run{
		Mode:          history.ModeMetadata,
		DryRun:        true,
		SourceLabel:   "Movies @ source",
		DestLabel:     "Movies @ dest",
		MatchedItems:  12,
		MigratedItems: 0,
		CopiedFields:  0,
	})
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected run ID to be assigned")
	}
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		t.Fatal("expected timestamps to be filled in")
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.RecordRun(ctx, history.Run{
			Mode:        history.ModeMetadata,
			SourceLabel: "Movies @ source",
			DestLabel:   "Movies @ dest",
			MatchedItems: i,
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			FinishedAt:  base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		})
		if err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].MatchedItems != 2 || runs[1].MatchedItems != 1 {
		t.Fatalf("expected newest-first ordering, got %d then %d", runs[0].MatchedItems, runs[1].MatchedItems)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected started_at round-trip: %v", runs[0].StartedAt)
	}
}

func TestRecentRunsPreservesFields(t *testing.T) {
	store := mustOpenStore(t)
	ctx := context.Background()

	recorded, err := store.RecordRun(ctx, history.Run{
		Mode:          history.ModePlaylist,
		DryRun:        false,
		SourceLabel:   "80s Hits @ source",
		DestLabel:     "80s Hits @ dest",
		MatchedItems:  40,
		MigratedItems: 40,
		ErrorCount:    1,
	})
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != recorded.ID || got.Mode != history.ModePlaylist || got.DryRun {
		t.Fatalf("unexpected run round-trip: %#v", got)
	}
	if got.MigratedItems != 40 || got.ErrorCount != 1 {
		t.Fatalf("unexpected counters: %#v", got)
	}
}

func TestOpenReexistingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.RecordRun(context.Background(), history.Run{
		Mode:        history.ModeMetadata,
		SourceLabel: "a",
		DestLabel:   "b",
	}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected run to survive reopen, got %d runs", len(runs))
	}
}
