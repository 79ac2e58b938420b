package core

import "standcore/pkg/domain"

// GrowthEngine derives growth metrics from sparse year-value series. Years
// must be sorted ascending; values align by index and use the missing marker
// for inestimable entries.
type GrowthEngine struct{}

// YearOverYear computes the per-year growth rate (v[t]-v[prev])/(t-prev)
// where prev is the most recent earlier year with a usable value. The first
// usable year has no rate.
func (GrowthEngine) YearOverYear(years []int, values []float64) []float64 {
	rates := make([]float64, len(values))
	prev := -1
	for i := range values {
		rates[i] = domain.Missing()
		if domain.IsMissing(values[i]) {
			continue
		}
		if prev >= 0 {
			rates[i] = (values[i] - values[prev]) / float64(years[i]-years[prev])
		}
		prev = i
	}
	return rates
}

// TrendSlope fits a least squares line through the usable points and returns
// its slope, or the missing marker when fewer than two distinct years carry
// a value. A constant series over distinct years has slope zero.
func (GrowthEngine) TrendSlope(years []int, values []float64) float64 {
	xs := make([]float64, 0, len(values))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if !domain.IsMissing(v) {
			xs = append(xs, float64(years[i]))
			ys = append(ys, v)
		}
	}
	slope, _, ok := olsFit(xs, ys)
	if !ok {
		return domain.Missing()
	}
	return slope
}

// AnnualSeries expands a sparse survey series into a dense annual series
// between the first and last survey year, linear in elapsed time between
// surveys. A year whose bracketing survey value is missing stays missing.
// Change is the year-over-year delta of the dense series.
func (GrowthEngine) AnnualSeries(plotID, method string, years []int, values []float64) []AnnualSeriesPoint {
	if len(years) == 0 {
		return nil
	}
	first, last := years[0], years[len(years)-1]
	points := make([]AnnualSeriesPoint, 0, last-first+1)
	for year := first; year <= last; year++ {
		points = append(points, AnnualSeriesPoint{
			PlotID:  plotID,
			Method:  method,
			Year:    year,
			Density: interpolateAt(year, years, values),
			Change:  domain.Missing(),
		})
	}
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Density
		cur := points[i].Density
		if !domain.IsMissing(prev) && !domain.IsMissing(cur) {
			points[i].Change = cur - prev
		}
	}
	return points
}

func interpolateAt(year int, years []int, values []float64) float64 {
	lo, hi := -1, -1
	for i, y := range years {
		if y == year {
			return values[i]
		}
		if y < year {
			lo = i
		}
		if y > year {
			hi = i
			break
		}
	}
	if lo < 0 || hi < 0 {
		return domain.Missing()
	}
	v0, v1 := values[lo], values[hi]
	if domain.IsMissing(v0) || domain.IsMissing(v1) {
		return domain.Missing()
	}
	span := float64(years[hi] - years[lo])
	return v0 + (v1-v0)*float64(year-years[lo])/span
}
