package forecast

import "time"

const (
	ModelLinear   = "linear"
	ModelSequence = "sequence"

	// MinDaysAhead and MaxDaysAhead bound the forecast horizon.
	MinDaysAhead = 1
	MaxDaysAhead = 365
)

// Point is a single forecasted day. Lower and Upper are set only when
// the method supports interval estimation and sample size permits it.
type Point struct {
	Date      time.Time
	Predicted float64
	Lower     *float64
	Upper     *float64
}

// Result is a complete multi-day forecast. Points always has exactly
// the requested number of days, dated consecutively after the series'
// last known day. Accuracy, when set, is finite and within [0,1].
type Result struct {
	Points   []Point
	Total    float64
	AvgDaily float64
	Trend    Trend
	Accuracy *float64
}

// Predictor is the common contract of the linear and sequence models.
type Predictor interface {
	Predict(series DailySeries, daysAhead int) (*Result, error)
}

func validateDaysAhead(daysAhead int) error {
	if daysAhead < MinDaysAhead || daysAhead > MaxDaysAhead {
		return errInvalidDaysAhead(daysAhead)
	}
	return nil
}

func finalize(points []Point, series DailySeries, signal float64, epsilon float64) *Result {
	var total float64
	for _, p := range points {
		total += p.Predicted
	}
	return &Result{
		Points:   points,
		Total:    total,
		AvgDaily: total / float64(len(points)),
		Trend:    classifyTrend(signal, series.Mean(), epsilon),
	}
}
