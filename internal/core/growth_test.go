package core

import (
	"testing"

	"standcore/pkg/domain"
)

func TestYearOverYear(t *testing.T) {
	var engine GrowthEngine
	years := []int{2016, 2018, 2020, 2023}
	values := []float64{10, domain.Missing(), 16, 22}
	rates := engine.YearOverYear(years, values)

	if !domain.IsMissing(rates[0]) {
		t.Errorf("first usable year has no rate, got %v", rates[0])
	}
	if !domain.IsMissing(rates[1]) {
		t.Errorf("missing year has no rate, got %v", rates[1])
	}
	// 2020 pairs against 2016, the most recent earlier usable year.
	if !approx(rates[2], 1.5) {
		t.Errorf("2020: got %v, want 1.5", rates[2])
	}
	if !approx(rates[3], 2.0) {
		t.Errorf("2023: got %v, want 2.0", rates[3])
	}
}

func TestTrendSlope(t *testing.T) {
	var engine GrowthEngine
	years := []int{2016, 2018, 2020}

	if got := engine.TrendSlope(years, []float64{10, 14, 18}); !approx(got, 2) {
		t.Errorf("slope: got %v, want 2", got)
	}
	if got := engine.TrendSlope(years, []float64{10, domain.Missing(), domain.Missing()}); !domain.IsMissing(got) {
		t.Errorf("single usable year: got %v, want missing", got)
	}
	if got := engine.TrendSlope(years, []float64{7, 7, 7}); !approx(got, 0) {
		t.Errorf("constant series: got %v, want 0", got)
	}
}

func TestAnnualSeriesInterpolation(t *testing.T) {
	var engine GrowthEngine
	points := engine.AnnualSeries("p1", "AGBJenkins", []int{2016, 2019}, []float64{100, 130})
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}
	wantDensity := []float64{100, 110, 120, 130}
	for i, want := range wantDensity {
		if !approx(points[i].Density, want) {
			t.Errorf("year %d: density %v, want %v", points[i].Year, points[i].Density, want)
		}
	}
	if !domain.IsMissing(points[0].Change) {
		t.Errorf("first year has no change, got %v", points[0].Change)
	}
	for i := 1; i < 4; i++ {
		if !approx(points[i].Change, 10) {
			t.Errorf("year %d: change %v, want 10", points[i].Year, points[i].Change)
		}
	}
	for _, p := range points {
		if p.PlotID != "p1" || p.Method != "AGBJenkins" {
			t.Fatalf("identity fields wrong: %+v", p)
		}
	}
}

func TestAnnualSeriesMissingBracketPoisonsSegment(t *testing.T) {
	var engine GrowthEngine
	years := []int{2016, 2019, 2021}
	values := []float64{100, domain.Missing(), 140}
	points := engine.AnnualSeries("p1", "m", years, values)

	byYear := make(map[int]AnnualSeriesPoint, len(points))
	for _, p := range points {
		byYear[p.Year] = p
	}
	// Survey years keep their own value, even a missing one.
	if !approx(byYear[2016].Density, 100) {
		t.Errorf("2016: got %v", byYear[2016].Density)
	}
	if !domain.IsMissing(byYear[2019].Density) {
		t.Errorf("2019: got %v, want missing", byYear[2019].Density)
	}
	// Both segments touch the missing survey year and stay missing.
	for _, year := range []int{2017, 2018, 2020} {
		if !domain.IsMissing(byYear[year].Density) {
			t.Errorf("%d: got %v, want missing", year, byYear[year].Density)
		}
	}
	if !approx(byYear[2021].Density, 140) {
		t.Errorf("2021: got %v", byYear[2021].Density)
	}
	// No usable adjacent pair, so every change is missing.
	for _, p := range points {
		if !domain.IsMissing(p.Change) {
			t.Errorf("%d: change %v, want missing", p.Year, p.Change)
		}
	}
}

func TestAnnualSeriesEmptyGrid(t *testing.T) {
	var engine GrowthEngine
	if points := engine.AnnualSeries("p1", "m", nil, nil); points != nil {
		t.Fatalf("expected nil, got %v", points)
	}
}
