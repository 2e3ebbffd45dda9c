package forecast

import "math"

// smooth applies single exponential smoothing with factor alpha.
// S[0]=x[0], S[i] = alpha*x[i] + (1-alpha)*S[i-1].
func smooth(series []float64, alpha float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// slopeOf fits an ordinary least-squares line of the series against its
// index and returns the slope. Zero for series shorter than two points.
func slopeOf(series []float64) float64 {
	n := float64(len(series))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// variance is the population variance of the series.
func variance(series []float64) float64 {
	n := float64(len(series))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / n
	var sq float64
	for _, v := range series {
		d := v - mean
		sq += d * d
	}
	return sq / n
}

// covariance is the population covariance of two equal-length series.
func covariance(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 || len(xs) != len(ys) {
		return 0
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n
	var sum float64
	for i := range xs {
		sum += (xs[i] - meanX) * (ys[i] - meanY)
	}
	return sum / n
}

// sanitize clamps NaN and infinities to the given fallback so downstream
// comparisons never silently fail.
func sanitize(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
