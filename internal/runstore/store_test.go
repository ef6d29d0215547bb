package runstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", DefaultFileName))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginRunAssignsIdentifier(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, RunInput{PlanID: "plan-1", PlanPath: "/tmp/plan.json", SceneCount: 3})
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run == nil || len(run.ID) != 36 {
		t.Fatalf("expected uuid run id, got %#v", run)
	}
	if run.Status != StatusRunning || run.SceneCount != 3 || run.PlanPath != "/tmp/plan.json" {
		t.Fatalf("unexpected run: %#v", run)
	}
	if run.StartedAt.IsZero() || !run.FinishedAt.IsZero() {
		t.Fatalf("unexpected timestamps: %#v", run)
	}
}

func TestBeginRunRequiresPlanID(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.BeginRun(context.Background(), RunInput{}); err == nil {
		t.Fatal("expected error without plan id")
	}
}

func TestRecordAssetsAndFinishRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	run, err := store.BeginRun(ctx, RunInput{PlanID: "plan-1"})
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	records := []AssetRecord{
		{RunID: run.ID, SceneIndex: 0, AssetID: "hero", Status: "generating"},
		{RunID: run.ID, SceneIndex: 0, AssetID: "hero", Status: "ready", URL: "https://cdn/hero.png"},
		{RunID: run.ID, SceneIndex: 1, AssetID: "bg", Status: "error", ErrorMessage: "quota exceeded"},
	}
	for _, rec := range records {
		if err := store.RecordAsset(ctx, rec); err != nil {
			t.Fatalf("RecordAsset failed: %v", err)
		}
	}
	if err := store.FinishRun(ctx, run.ID, StatusPartial, ""); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	finished, err := store.GetRun(ctx, run.ID)
	if err != nil || finished == nil {
		t.Fatalf("GetRun failed: %v %#v", err, finished)
	}
	if finished.Status != StatusPartial || finished.AssetsTotal != 2 || finished.AssetsReady != 1 || finished.AssetsFailed != 1 {
		t.Fatalf("unexpected counters: %#v", finished)
	}
	if finished.FinishedAt.IsZero() || finished.Elapsed() < 0 {
		t.Fatalf("expected finish timestamp: %#v", finished)
	}

	assets, err := store.ListAssets(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != 2 || assets[0].AssetID != "hero" || assets[0].URL != "https://cdn/hero.png" || assets[1].ErrorMessage != "quota exceeded" {
		t.Fatalf("unexpected assets: %#v", assets)
	}
}

func TestFinishRunRejectsRunningStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	run, _ := store.BeginRun(ctx, RunInput{PlanID: "plan-1"})
	if err := store.FinishRun(ctx, run.ID, StatusRunning, ""); err == nil {
		t.Fatal("expected non-terminal status to be rejected")
	}
	if err := store.FinishRun(ctx, "missing", StatusFailed, "boom"); err == nil {
		t.Fatal("expected unknown run to fail")
	}
}

func TestGetRunByPrefixAndMissing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	run, _ := store.BeginRun(ctx, RunInput{PlanID: "plan-1"})

	found, err := store.GetRun(ctx, run.ID[:8])
	if err != nil || found == nil || found.ID != run.ID {
		t.Fatalf("prefix lookup failed: %v %#v", err, found)
	}
	missing, err := store.GetRun(ctx, "does-not-exist")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing run, got %#v %v", missing, err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, _ := store.BeginRun(ctx, RunInput{PlanID: "a"})
	second, _ := store.BeginRun(ctx, RunInput{PlanID: "b"})

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("unexpected order: %#v", runs)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.BeginRun(context.Background(), RunInput{PlanID: "x"}); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.ListRuns(context.Background(), 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected persisted run, got %v %#v", err, runs)
	}
}
