package scoring

import (
	"math"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

// momentum measures how steeply a trending histogram is moving: the
// least-squares slope of the values against their ordinal position,
// scaled and taken as magnitude. Histograms with fewer than two points
// have no direction and score zero.
func momentum(histogram []domain.HistogramPoint) float64 {
	n := len(histogram)
	if n < minHistogramSize {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64

	for i, point := range histogram {
		x := float64(i)
		sumX += x
		sumY += point.Value
		sumXY += x * point.Value
		sumXX += x * x
	}

	fn := float64(n)

	denominator := fn*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}

	slope := (fn*sumXY - sumX*sumY) / denominator

	return math.Abs(slope) * momentumScale
}
