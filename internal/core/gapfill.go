package core

import "standcore/pkg/domain"

// BiomassGapFiller estimates missing per-method biomass values over a plot's
// survey-year grid. Filling always runs before any status-driven zeroing, so
// trends are extrapolated from living-years data and death zeroes the filled
// values afterwards.
type BiomassGapFiller struct{}

// FillSeries fills the missing entries of one method's biomass series in
// place. With observations on at least two distinct years it fits a least
// squares line against year and evaluates it at the missing years, clipped
// at zero since biomass cannot be negative. With observations confined to a
// single year it fills their mean everywhere. With no observations the
// series stays entirely missing.
func (BiomassGapFiller) FillSeries(grid []int, values []float64) {
	xs := make([]float64, 0, len(grid))
	ys := make([]float64, 0, len(grid))
	for i, v := range values {
		if !domain.IsMissing(v) {
			xs = append(xs, float64(grid[i]))
			ys = append(ys, v)
		}
	}
	if len(ys) == 0 {
		return
	}
	if slope, intercept, ok := olsFit(xs, ys); ok {
		for i, v := range values {
			if domain.IsMissing(v) {
				est := intercept + slope*float64(grid[i])
				if est < 0 {
					est = 0
				}
				values[i] = est
			}
		}
		return
	}
	var sum float64
	for _, y := range ys {
		sum += y
	}
	mean := sum / float64(len(ys))
	for i, v := range values {
		if domain.IsMissing(v) {
			values[i] = mean
		}
	}
}

// propagateGrowthForm copies the nearest observed growth-form label onto
// filler rows, preferring the most recent earlier year and falling back to
// the next later one. Rows backed by a real observation are never touched,
// even when their label is blank.
func propagateGrowthForm(forms []string, original []bool) {
	last := ""
	for i := range forms {
		if original[i] {
			if forms[i] != "" {
				last = forms[i]
			}
			continue
		}
		if forms[i] == "" && last != "" {
			forms[i] = last
		}
		if forms[i] != "" {
			last = forms[i]
		}
	}
	next := ""
	for i := len(forms) - 1; i >= 0; i-- {
		if original[i] {
			if forms[i] != "" {
				next = forms[i]
			}
			continue
		}
		if forms[i] == "" && next != "" {
			forms[i] = next
		}
		if forms[i] != "" {
			next = forms[i]
		}
	}
}

// propagateDiameter is the float counterpart of propagateGrowthForm for
// aggregated stem diameters on filler rows.
func propagateDiameter(diameters []float64, original []bool) {
	last := domain.Missing()
	for i := range diameters {
		if original[i] {
			if !domain.IsMissing(diameters[i]) {
				last = diameters[i]
			}
			continue
		}
		if domain.IsMissing(diameters[i]) && !domain.IsMissing(last) {
			diameters[i] = last
		}
		if !domain.IsMissing(diameters[i]) {
			last = diameters[i]
		}
	}
	next := domain.Missing()
	for i := len(diameters) - 1; i >= 0; i-- {
		if original[i] {
			if !domain.IsMissing(diameters[i]) {
				next = diameters[i]
			}
			continue
		}
		if domain.IsMissing(diameters[i]) && !domain.IsMissing(next) {
			diameters[i] = next
		}
		if !domain.IsMissing(diameters[i]) {
			next = diameters[i]
		}
	}
}
