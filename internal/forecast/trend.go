package forecast

import "math"

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Trend is a coarse three-way classification of a forecast's direction.
type Trend string

// DefaultStableEpsilon is the fraction of the series mean below which a
// directional signal counts as noise.
const DefaultStableEpsilon = 0.01

// ClassifyTrend labels a directional signal (a fitted slope or a
// first-to-last forecast delta) relative to the series' mean magnitude.
// A zero reference scale (an all-zero series) is always stable; there is
// no meaningful direction to a flat line at zero.
func ClassifyTrend(signal, referenceScale float64) Trend {
	return classifyTrend(signal, referenceScale, DefaultStableEpsilon)
}

func classifyTrend(signal, referenceScale, epsilon float64) Trend {
	if referenceScale == 0 {
		return TrendStable
	}
	if math.Abs(signal)/math.Abs(referenceScale) < epsilon {
		return TrendStable
	}
	if signal > 0 {
		return TrendIncreasing
	}
	return TrendDecreasing
}
