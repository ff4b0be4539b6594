package stats

import "math"

// Z95 is the two-sided 95% standard normal quantile.
const Z95 = 1.9599639715843482

// WilsonInterval returns the 95% Wilson score interval for observed/sampleSize.
// A zero sample size is not guarded; the result is NaN.
func WilsonInterval(observed, sampleSize float64) (low, high float64) {
	n := sampleSize
	p := observed / n
	z2 := Z95 * Z95

	center := p + z2/(2*n)
	spread := Z95 * math.Sqrt(p*(1-p)/n+z2/(4*n*n))
	denom := 1 + z2/n

	return (center - spread) / denom, (center + spread) / denom
}

// Proportion returns observed/sampleSize. A zero sample size gives +Inf or NaN, never a panic.
func Proportion(observed, sampleSize float64) float64 {
	return observed / sampleSize
}
