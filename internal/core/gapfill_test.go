package core

import (
	"math"
	"testing"

	"standcore/pkg/domain"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFillSeriesLinearTrend(t *testing.T) {
	var filler BiomassGapFiller
	grid := []int{2016, 2018, 2020, 2023}
	values := []float64{10, 14, domain.Missing(), domain.Missing()}
	filler.FillSeries(grid, values)
	// Fit through (2016,10) and (2018,14): 2 kg/yr.
	if !approx(values[2], 18) {
		t.Errorf("2020: got %v, want 18", values[2])
	}
	if !approx(values[3], 24) {
		t.Errorf("2023: got %v, want 24", values[3])
	}
}

func TestFillSeriesClipsNegativeEstimates(t *testing.T) {
	var filler BiomassGapFiller
	grid := []int{2016, 2017, 2020}
	values := []float64{10, 5, domain.Missing()}
	filler.FillSeries(grid, values)
	// The fitted line crosses zero before 2020; biomass cannot be negative.
	if values[2] != 0 {
		t.Errorf("2020: got %v, want 0", values[2])
	}
}

func TestFillSeriesSingleYearUsesMean(t *testing.T) {
	var filler BiomassGapFiller
	grid := []int{2016, 2018, 2020}
	values := []float64{domain.Missing(), 12, domain.Missing()}
	filler.FillSeries(grid, values)
	for i, v := range values {
		if !approx(v, 12) {
			t.Errorf("index %d: got %v, want 12", i, v)
		}
	}
}

func TestFillSeriesAllMissingStaysMissing(t *testing.T) {
	var filler BiomassGapFiller
	grid := []int{2016, 2018}
	values := []float64{domain.Missing(), domain.Missing()}
	filler.FillSeries(grid, values)
	for i, v := range values {
		if !domain.IsMissing(v) {
			t.Errorf("index %d: got %v, want missing", i, v)
		}
	}
}

func TestFillSeriesNeverTouchesObservedValues(t *testing.T) {
	var filler BiomassGapFiller
	grid := []int{2016, 2017, 2018}
	values := []float64{10, 100, 14}
	filler.FillSeries(grid, values)
	if values[0] != 10 || values[1] != 100 || values[2] != 14 {
		t.Fatalf("observed values changed: %v", values)
	}
}

func TestPropagateGrowthForm(t *testing.T) {
	tests := []struct {
		name     string
		forms    []string
		original []bool
		want     []string
	}{
		{
			name:     "forward fill onto filler rows",
			forms:    []string{"small tree", "", ""},
			original: []bool{true, false, false},
			want:     []string{"small tree", "small tree", "small tree"},
		},
		{
			name:     "backward fill when nothing earlier",
			forms:    []string{"", "", "sapling"},
			original: []bool{false, false, true},
			want:     []string{"sapling", "sapling", "sapling"},
		},
		{
			name:     "observed blank rows stay blank",
			forms:    []string{"small tree", "", "small tree"},
			original: []bool{true, true, true},
			want:     []string{"small tree", "", "small tree"},
		},
		{
			name:     "forward beats backward",
			forms:    []string{"sapling", "", "single shrub"},
			original: []bool{true, false, true},
			want:     []string{"sapling", "sapling", "single shrub"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			propagateGrowthForm(tc.forms, tc.original)
			for i := range tc.want {
				if tc.forms[i] != tc.want[i] {
					t.Errorf("index %d: got %q, want %q", i, tc.forms[i], tc.want[i])
				}
			}
		})
	}
}

func TestPropagateDiameter(t *testing.T) {
	diameters := []float64{domain.Missing(), 12.5, domain.Missing(), domain.Missing()}
	original := []bool{false, true, false, true}
	propagateDiameter(diameters, original)
	if !approx(diameters[0], 12.5) {
		t.Errorf("index 0: got %v, want 12.5 (backward)", diameters[0])
	}
	if !approx(diameters[2], 12.5) {
		t.Errorf("index 2: got %v, want 12.5 (forward)", diameters[2])
	}
	// Index 3 is an observed row with no measurement; it must stay missing.
	if !domain.IsMissing(diameters[3]) {
		t.Errorf("index 3: got %v, want missing", diameters[3])
	}
}

func TestOLSFit(t *testing.T) {
	slope, intercept, ok := olsFit([]float64{1, 2, 3}, []float64{2, 4, 6})
	if !ok || !approx(slope, 2) || !approx(intercept, 0) {
		t.Fatalf("got slope=%v intercept=%v ok=%v", slope, intercept, ok)
	}

	if _, _, ok := olsFit([]float64{5}, []float64{1}); ok {
		t.Fatalf("single point must not fit")
	}
	if _, _, ok := olsFit([]float64{5, 5}, []float64{1, 3}); ok {
		t.Fatalf("single distinct x must not fit")
	}

	slope, _, ok = olsFit([]float64{1, 2, 3}, []float64{4, 4, 4})
	if !ok || !approx(slope, 0) {
		t.Fatalf("constant series over distinct x must have slope 0, got %v ok=%v", slope, ok)
	}
}
