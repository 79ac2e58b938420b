package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"standcore/pkg/domain"
)

func sampleRun(id string) domain.RunRecord {
	return domain.RunRecord{
		ID:        id,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Result: domain.SiteResult{
			SiteID:  "SITE",
			Methods: []string{"AGBJenkins"},
			PlotYears: []domain.PlotYearRecord{{
				PlotID: "P1",
				Year:   2016,
				TreeDensity: map[string]float64{
					"AGBJenkins": 2.5,
				},
				SmallWoodyDensity: map[string]float64{
					"AGBJenkins": domain.Missing(),
				},
				TotalDensity: map[string]float64{
					"AGBJenkins": 2.5,
				},
				TotalGrowth: map[string]float64{"AGBJenkins": domain.Missing()},
				TotalTrend:  map[string]float64{"AGBJenkins": domain.Missing()},
				TreeCount:   1,
			}},
		},
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "standcore.db")
	ctx := context.Background()

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SaveRun(ctx, sampleRun("run-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, ok, err := reopened.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if got.Result.SiteID != "SITE" || len(got.Result.PlotYears) != 1 {
		t.Fatalf("result lost: %+v", got.Result)
	}
	row := got.Result.PlotYears[0]
	if row.TreeDensity["AGBJenkins"] != 2.5 || row.TreeCount != 1 {
		t.Fatalf("plot year mangled: %+v", row)
	}
	// Missing values survive the JSON payload as the missing marker.
	if !domain.IsMissing(row.SmallWoodyDensity["AGBJenkins"]) {
		t.Fatalf("missing density became %v", row.SmallWoodyDensity["AGBJenkins"])
	}
	if !got.CreatedAt.Equal(sampleRun("run-1").CreatedAt) {
		t.Fatalf("created at drifted: %v", got.CreatedAt)
	}
}

func TestStoreUpsertReplacesRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standcore.db")
	ctx := context.Background()

	store, err := NewStore(path)
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
	got, _, _ := store.GetRun(ctx, "run-1")
	if got.Result.SiteID != "SITE-2" {
		t.Fatalf("upsert did not replace: %+v", got.Result)
	}
}

func TestStoreReportsConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explicit.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("path: got %s", store.Path())
	}
	_ = store.Close()
}
