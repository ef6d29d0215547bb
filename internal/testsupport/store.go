package testsupport

import (
	"context"
	"testing"

	"vidplan/internal/config"
	"vidplan/internal/runstore"
)

// MustOpenStore opens a runstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	store, err := runstore.OpenFromConfig(cfg)
	if err != nil {
		t.Fatalf("runstore.OpenFromConfig: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginRun starts a run for tests using the provided store.
func BeginRun(t testing.TB, store *runstore.Store, planID string) *runstore.Run {
	t.Helper()

	run, err := store.BeginRun(context.Background(), runstore.RunInput{PlanID: planID})
	if err != nil {
		t.Fatalf("store.BeginRun: %v", err)
	}
	return run
}
