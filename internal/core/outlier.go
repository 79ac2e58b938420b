package core

import "standcore/pkg/domain"

// Diameter spike thresholds in cm per year. A flagged year must both grow
// implausibly fast from the previous observation and shrink implausibly fast
// toward the next one, which isolates single-year transcription spikes from
// genuine growth.
const (
	DefaultGrowthSpikeCmPerYr  = 10.0
	DefaultDeclineSpikeCmPerYr = 5.0
)

// OutlierFilter flags single-year diameter spikes.
type OutlierFilter struct {
	GrowthSpikeCmPerYr  float64
	DeclineSpikeCmPerYr float64
}

// NewOutlierFilter returns a filter with the default spike thresholds.
func NewOutlierFilter() OutlierFilter {
	return OutlierFilter{
		GrowthSpikeCmPerYr:  DefaultGrowthSpikeCmPerYr,
		DeclineSpikeCmPerYr: DefaultDeclineSpikeCmPerYr,
	}
}

// Flag returns a per-grid-year mask of rejected diameters. Only years with a
// measured diameter participate; fewer than three measured years can never
// produce a flag, and the first and last measured years are never flagged.
func (f OutlierFilter) Flag(grid []int, diameters []float64) []bool {
	flagged := make([]bool, len(grid))
	measured := make([]int, 0, len(grid))
	for i := range grid {
		if !domain.IsMissing(diameters[i]) {
			measured = append(measured, i)
		}
	}
	if len(measured) < 3 {
		return flagged
	}
	for m := 1; m < len(measured)-1; m++ {
		i := measured[m]
		prev := measured[m-1]
		next := measured[m+1]
		growth := (diameters[i] - diameters[prev]) / float64(grid[i]-grid[prev])
		decline := (diameters[i] - diameters[next]) / float64(grid[next]-grid[i])
		if growth > f.GrowthSpikeCmPerYr && decline > f.DeclineSpikeCmPerYr {
			flagged[i] = true
		}
	}
	return flagged
}
