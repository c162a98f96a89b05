package forecast

import "math"

// DefaultConfidenceMultiplier widens the residual band to an
// approximate 95% interval.
const DefaultConfidenceMultiplier = 1.96

// minPointsForBounds is the smallest series that yields a usable
// residual spread; below it bounds are omitted rather than fabricated.
const minPointsForBounds = 3

// LinearPredictor fits an ordinary least squares trend over the daily
// series and projects it forward. It is always available.
type LinearPredictor struct {
	confidenceK float64
	epsilon     float64
}

// NewLinearPredictor returns a predictor with the default confidence
// multiplier and stability threshold.
func NewLinearPredictor() *LinearPredictor {
	return &LinearPredictor{
		confidenceK: DefaultConfidenceMultiplier,
		epsilon:     DefaultStableEpsilon,
	}
}

// NewLinearPredictorWith overrides the confidence multiplier and the
// stable-trend epsilon. Non-positive values fall back to the defaults.
func NewLinearPredictorWith(confidenceK, epsilon float64) *LinearPredictor {
	p := NewLinearPredictor()
	if confidenceK > 0 {
		p.confidenceK = confidenceK
	}
	if epsilon > 0 {
		p.epsilon = epsilon
	}
	return p
}

// Predict fits y = a*x + b over the series (x is the 0-based day index)
// and forecasts daysAhead consecutive days after the series' last day.
// Negative forecasts are clamped to 0. Accuracy is the fit's R²,
// defined as 0 when the series has no variance. Confidence bounds are
// produced only when the series has at least three points.
func (p *LinearPredictor) Predict(series DailySeries, daysAhead int) (*Result, error) {
	if err := validateDaysAhead(daysAhead); err != nil {
		return nil, err
	}
	n := series.Len()
	if n < 2 {
		return nil, ErrInsufficientData
	}

	slope, intercept := fitOLS(series.Amounts)

	accuracy := rSquared(series.Amounts, slope, intercept)
	var residualStd float64
	withBounds := n >= minPointsForBounds
	if withBounds {
		residualStd = residualStdDev(series.Amounts, slope, intercept)
	}

	points := make([]Point, daysAhead)
	for i := range points {
		x := float64(n + i)
		predicted := slope*x + intercept
		if predicted < 0 {
			predicted = 0
		}
		pt := Point{Date: series.Day(n + i), Predicted: predicted}
		if withBounds {
			lower := slope*x + intercept - p.confidenceK*residualStd
			upper := slope*x + intercept + p.confidenceK*residualStd
			pt.Lower = &lower
			pt.Upper = &upper
		}
		points[i] = pt
	}

	result := finalize(points, series, slope, p.epsilon)
	result.Accuracy = &accuracy
	return result, nil
}

// fitOLS returns the least-squares slope and intercept for y over
// x = 0..len(y)-1.
func fitOLS(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// Single x value; cannot happen for n >= 2 consecutive days,
		// but keep the math total.
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// rSquared is the coefficient of determination of the fit on the
// training data. A zero-variance series yields 0, never NaN.
func rSquared(y []float64, slope, intercept float64) float64 {
	mean := meanOf(y)
	var ssTot, ssRes float64
	for i, v := range y {
		fit := slope*float64(i) + intercept
		ssTot += (v - mean) * (v - mean)
		ssRes += (v - fit) * (v - fit)
	}
	if ssTot == 0 {
		return 0
	}
	r2 := 1 - ssRes/ssTot
	if math.IsNaN(r2) || r2 < 0 {
		return 0
	}
	if r2 > 1 {
		return 1
	}
	return r2
}

// residualStdDev is the sample standard deviation of training residuals.
func residualStdDev(y []float64, slope, intercept float64) float64 {
	n := len(y)
	residuals := make([]float64, n)
	var sum float64
	for i, v := range y {
		residuals[i] = v - (slope*float64(i) + intercept)
		sum += residuals[i]
	}
	mean := sum / float64(n)
	var ss float64
	for _, r := range residuals {
		ss += (r - mean) * (r - mean)
	}
	return math.Sqrt(ss / float64(n-1))
}

func meanOf(y []float64) float64 {
	var sum float64
	for _, v := range y {
		sum += v
	}
	return sum / float64(len(y))
}
