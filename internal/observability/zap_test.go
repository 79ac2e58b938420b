package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerForwardsLevelsAndFields(t *testing.T) {
	zapCore, logs := observer.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(zapCore))

	logger.Debug("resolving", "plot_id", "P1")
	logger.Info("resolved", "plot_id", "P1", "years", 4)
	logger.Warn("gap", "individual_id", "T1")
	logger.Error("failed", "reason", "no survey events")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("entries: got %d, want 4", len(entries))
	}
	if entries[1].Message != "resolved" {
		t.Fatalf("message: %q", entries[1].Message)
	}
	fields := entries[1].ContextMap()
	if fields["plot_id"] != "P1" {
		t.Fatalf("plot_id field: %v", fields["plot_id"])
	}
	if fields["years"] != int64(4) {
		t.Fatalf("years field: %v (%T)", fields["years"], fields["years"])
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, _, err := NewLogger("shouting", false); err == nil {
		t.Fatalf("bad level accepted")
	}
}

func TestNewLoggerBuildsBothModes(t *testing.T) {
	for _, development := range []bool{false, true} {
		logger, flush, err := NewLogger("info", development)
		if err != nil {
			t.Fatalf("development=%v: %v", development, err)
		}
		if logger == nil {
			t.Fatalf("development=%v: nil logger", development)
		}
		flush()
	}
}
