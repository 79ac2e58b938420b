package core

// olsFit computes the ordinary least squares line y = intercept + slope*x
// over the supplied points. It returns ok=false when fewer than two points
// or fewer than two distinct x values are present. A constant y series over
// distinct x values yields slope 0.
func olsFit(xs, ys []float64) (slope, intercept float64, ok bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, 0, false
	}
	distinct := false
	for i := 1; i < len(xs); i++ {
		if xs[i] != xs[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return 0, 0, false
	}
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n
	var num, den float64
	for i := range xs {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, 0, false
	}
	slope = num / den
	intercept = meanY - slope*meanX
	return slope, intercept, true
}
