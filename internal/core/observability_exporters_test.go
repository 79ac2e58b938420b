package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "reconcile_plot", true, 20*time.Millisecond)
	rec.Observe(ctx, "reconcile_plot", true, 30*time.Millisecond)
	rec.Observe(ctx, "reconcile_plot", false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second) // ignored

	snap := rec.Snapshot()
	if got := snap.DurationsMS["reconcile_plot"]; got != 55 {
		t.Errorf("durations: got %v, want 55", got)
	}
	if got := snap.Results["reconcile_plot"]["success"]; got != 2 {
		t.Errorf("success count: got %d, want 2", got)
	}
	if got := snap.Results["reconcile_plot"]["error"]; got != 1 {
		t.Errorf("error count: got %d, want 1", got)
	}
	if rec.Name() == "" {
		t.Errorf("generated name must not be empty")
	}
}

func TestPrometheusMetricsRecorderRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(registry)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "reconcile_site", true, 120*time.Millisecond)
	rec.Observe(context.Background(), "reconcile_site", false, 10*time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	if !names["standcore_operation_duration_seconds"] || !names["standcore_operation_results_total"] {
		t.Fatalf("collectors missing: %v", names)
	}

	// Double registration against the same registry must fail.
	if _, err := NewPrometheusMetricsRecorder(registry); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
