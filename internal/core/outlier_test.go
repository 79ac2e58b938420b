package core

import (
	"testing"

	"standcore/pkg/domain"
)

func TestOutlierFlagsSingleYearSpike(t *testing.T) {
	filter := NewOutlierFilter()
	grid := []int{2015, 2016, 2017, 2018}
	diameters := []float64{1.6, 1.8, 36.7, 2.0}
	flagged := filter.Flag(grid, diameters)
	want := []bool{false, false, true, false}
	for i := range want {
		if flagged[i] != want[i] {
			t.Errorf("year %d: flagged=%v, want %v", grid[i], flagged[i], want[i])
		}
	}
}

func TestOutlierRequiresBothSpikeAndDecline(t *testing.T) {
	filter := NewOutlierFilter()
	grid := []int{2015, 2016, 2017}

	// Fast growth that is sustained afterwards is genuine growth.
	sustained := []float64{1.6, 36.7, 36.9}
	for i, f := range filter.Flag(grid, sustained) {
		if f {
			t.Errorf("sustained growth flagged at index %d", i)
		}
	}

	// A decline without a preceding spike is damage, not transcription error.
	decline := []float64{30.0, 29.0, 5.0}
	for i, f := range filter.Flag(grid, decline) {
		if f {
			t.Errorf("plain decline flagged at index %d", i)
		}
	}
}

func TestOutlierNeedsThreeMeasuredYears(t *testing.T) {
	filter := NewOutlierFilter()
	grid := []int{2015, 2016, 2017, 2018}
	diameters := []float64{1.6, domain.Missing(), 36.7, domain.Missing()}
	for i, f := range filter.Flag(grid, diameters) {
		if f {
			t.Errorf("flag with two measured years at index %d", i)
		}
	}
}

func TestOutlierSkipsMissingYearsWhenPairing(t *testing.T) {
	filter := NewOutlierFilter()
	// The spike at 2018 pairs against 2015 and 2020: rates divide by the
	// elapsed years, not by grid steps.
	grid := []int{2015, 2016, 2018, 2020}
	diameters := []float64{2.0, domain.Missing(), 40.0, 3.0}
	flagged := filter.Flag(grid, diameters)
	if !flagged[2] {
		t.Fatalf("expected flag at 2018, got %v", flagged)
	}
	if flagged[0] || flagged[1] || flagged[3] {
		t.Fatalf("unexpected flags: %v", flagged)
	}
}

func TestOutlierNeverFlagsEndpoints(t *testing.T) {
	filter := NewOutlierFilter()
	grid := []int{2015, 2016, 2017}
	diameters := []float64{50.0, 2.0, 2.1}
	flagged := filter.Flag(grid, diameters)
	if flagged[0] || flagged[2] {
		t.Fatalf("endpoints must never be flagged: %v", flagged)
	}
}
