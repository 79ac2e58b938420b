package core

import (
	"sort"

	"standcore/pkg/domain"
)

// PlotAggregator reduces individual-year records into per-plot-year density
// records. It is a pure reduction: aggregating the same records twice yields
// identical results.
type PlotAggregator struct {
	Methods []string
}

// Aggregate builds exactly one PlotYearRecord per surveyed year, in year
// order. Duplicate survey rows for the same year collapse onto the first.
// Surveyed years with no individuals still produce a record with zero
// densities and counts. The unaccounted count comes from the audit pass and
// is constant across a plot's years.
func (a PlotAggregator) Aggregate(events []SurveyEvent, records []IndividualYearRecord, unaccounted int) []PlotYearRecord {
	byYear := make(map[int][]IndividualYearRecord)
	for _, rec := range records {
		byYear[rec.Year] = append(byYear[rec.Year], rec)
	}
	sorted := make([]SurveyEvent, 0, len(events))
	seen := make(map[int]bool, len(events))
	for _, event := range events {
		if seen[event.Year] {
			continue
		}
		seen[event.Year] = true
		sorted = append(sorted, event)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	out := make([]PlotYearRecord, 0, len(sorted))
	for _, event := range sorted {
		recs := byYear[event.Year]
		var trees, smallWoody []IndividualYearRecord
		for _, rec := range recs {
			switch rec.Category {
			case CategoryTree:
				trees = append(trees, rec)
			case CategorySmallWoody:
				smallWoody = append(smallWoody, rec)
			}
		}

		row := PlotYearRecord{
			PlotID:            event.PlotID,
			Year:              event.Year,
			TreeDensity:       make(map[string]float64, len(a.Methods)),
			SmallWoodyDensity: make(map[string]float64, len(a.Methods)),
			TotalDensity:      make(map[string]float64, len(a.Methods)),
			TotalGrowth:       make(map[string]float64, len(a.Methods)),
			TotalTrend:        make(map[string]float64, len(a.Methods)),
			UnaccountedCount:  unaccounted,
		}
		for _, method := range a.Methods {
			treeDensity := densityFor(trees, method, event.SampledAreaTreesM2)
			smallDensity := densityFor(smallWoody, method, event.SampledAreaSmallWoodyM2)
			row.TreeDensity[method] = treeDensity
			row.SmallWoodyDensity[method] = smallDensity
			row.TotalDensity[method] = sumPreserveMissing(treeDensity, smallDensity)
			row.TotalGrowth[method] = domain.Missing()
			row.TotalTrend[method] = domain.Missing()
		}

		for _, rec := range trees {
			if !rec.Status.Zeroed() {
				row.TreeCount++
			}
		}
		for _, rec := range smallWoody {
			if rec.Status.Zeroed() {
				continue
			}
			row.SmallWoodyCount++
			if !domain.IsMissing(rec.Diameter) {
				row.SmallWoodyMeasuredCount++
			}
		}
		for _, rec := range recs {
			switch {
			case rec.Provenance == ProvenanceFilled:
				row.FilledCount++
			case rec.Status == StatusRemoved:
				row.RemovedCount++
			case rec.Status == StatusDisqualified:
				row.DisqualifiedCount++
			}
		}
		out = append(out, row)
	}
	return out
}

// densityFor converts a category pool's biomass sum to Mg/ha.
//
// Zero qualifying individuals means a real zero, as does a pool whose every
// member is zeroed for cause. A pool with living members but no usable
// estimate, or a missing or non-positive sampled area, is inestimable and
// yields the missing marker.
func densityFor(pool []IndividualYearRecord, method string, areaM2 float64) float64 {
	if len(pool) == 0 {
		return 0
	}
	living := 0
	usable := 0
	var sumKg float64
	for _, rec := range pool {
		if rec.Status.Zeroed() {
			continue
		}
		living++
		v := rec.BiomassKg[method]
		if domain.IsMissing(v) {
			continue
		}
		usable++
		sumKg += v
	}
	if living == 0 {
		return 0
	}
	if domain.IsMissing(areaM2) || areaM2 <= 0 {
		return domain.Missing()
	}
	if usable == 0 {
		return domain.Missing()
	}
	return sumKg / domain.KgPerMg / (areaM2 / domain.M2PerHectare)
}

// sumPreserveMissing adds two quantities, treating a missing operand as zero
// unless both are missing.
func sumPreserveMissing(a, b float64) float64 {
	switch {
	case domain.IsMissing(a) && domain.IsMissing(b):
		return domain.Missing()
	case domain.IsMissing(a):
		return b
	case domain.IsMissing(b):
		return a
	default:
		return a + b
	}
}
