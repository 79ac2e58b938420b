package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite" // stands in for the server during tests

	"standcore/pkg/domain"
)

// openViaSQLite redirects the store at an embedded database file. The store
// only uses portable SQL ($n placeholders, ON CONFLICT upsert), so the tests
// exercise the real query paths without a running server.
func openViaSQLite(t *testing.T, path string) func() {
	t.Helper()
	return OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlite", path)
	})
}

func sampleRun(id string) domain.RunRecord {
	return domain.RunRecord{
		ID:        id,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Result: domain.SiteResult{
			SiteID:  "SITE",
			Methods: []string{"AGBJenkins"},
		},
	}
}

func TestStoreSaveAndHydrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	restore := openViaSQLite(t, path)
	defer restore()
	ctx := context.Background()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SaveRun(ctx, sampleRun("run-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore("")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, ok, err := reopened.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if got.Result.SiteID != "SITE" {
		t.Fatalf("result lost: %+v", got.Result)
	}
}

func TestStoreUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	restore := openViaSQLite(t, path)
	defer restore()
	ctx := context.Background()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	first := sampleRun("run-1")
	if err := store.SaveRun(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := first
	second.Result.SiteID = "SITE-2"
	if err := store.SaveRun(ctx, second); err != nil {
		t.Fatalf("resave: %v", err)
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count: got %d, want 1", count)
	}
}
