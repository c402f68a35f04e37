package statistics

import (
	"math"
)

// Critical z-scores for the supported confidence levels. Any other level
// falls back to the 95% score.
const (
	z90  = 1.645
	z95  = 1.96
	z99  = 2.576
	z999 = 3.291
)

// zScoreFor maps a confidence level to its two-tailed critical z-score
func zScoreFor(level float64) float64 {
	switch level {
	case 0.90:
		return z90
	case 0.95:
		return z95
	case 0.99:
		return z99
	case 0.999:
		return z999
	default:
		return z95
	}
}

// Zelen & Severo polynomial coefficients for the standard normal CDF
// (Abramowitz & Stegun 26.2.17)
const (
	zsB0 = 0.2316419
	zsB1 = 0.319381530
	zsB2 = -0.356563782
	zsB3 = 1.781477937
	zsB4 = -1.821255978
	zsB5 = 1.330274429
)

// NormalCDF computes the standard normal cumulative distribution function
// with the Zelen-Severo closed-form polynomial approximation. Absolute error
// is below 7.5e-8, which is ample for p-values on proportion tests.
func NormalCDF(x float64) float64 {
	if x < 0 {
		return 1 - NormalCDF(-x)
	}
	t := 1 / (1 + zsB0*x)
	poly := t * (zsB1 + t*(zsB2+t*(zsB3+t*(zsB4+t*zsB5))))
	return 1 - normalPDF(x)*poly
}

// normalPDF is the standard normal density
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// twoTailedPValue converts a z statistic to its two-tailed p-value
func twoTailedPValue(z float64) float64 {
	p := 2 * (1 - NormalCDF(math.Abs(z)))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// clipProportion clamps a value to the valid probability range [0,1]
func clipProportion(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
