package forecast

import (
	"errors"
	"math"
	"testing"
)

func TestLinearPredictor_ConstantSeries(t *testing.T) {
	// 10 daily expenses of 5 euros each.
	txs := dailyExpenses(2024, 1, 1, 10, func(int) int64 { return 500 })
	series, err := Aggregate(txs)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	result, err := NewLinearPredictor().Predict(series, 5)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	if len(result.Points) != 5 {
		t.Fatalf("len(Points) = %d, want 5", len(result.Points))
	}
	if result.Trend != TrendStable {
		t.Errorf("Trend = %q, want stable", result.Trend)
	}
	if math.Abs(result.Total-25.0) > 1e-6 {
		t.Errorf("Total = %v, want 25.0", result.Total)
	}
	if math.Abs(result.AvgDaily-5.0) > 1e-6 {
		t.Errorf("AvgDaily = %v, want 5.0", result.AvgDaily)
	}
	if result.Accuracy == nil || *result.Accuracy != 0 {
		t.Errorf("Accuracy = %v, want exactly 0 for a zero-variance series", result.Accuracy)
	}
}

func TestLinearPredictor_IncreasingSeries(t *testing.T) {
	// 10, 20, 30 euros on three consecutive days: slope 10.
	txs := dailyExpenses(2024, 5, 1, 3, func(i int) int64 { return int64(1000 * (i + 1)) })
	series, err := Aggregate(txs)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	result, err := NewLinearPredictor().Predict(series, 2)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}

	if result.Trend != TrendIncreasing {
		t.Errorf("Trend = %q, want increasing", result.Trend)
	}
	if math.Abs(result.Points[0].Predicted-40.0) > 1e-6 {
		t.Errorf("day 4 forecast = %v, want 40.0", result.Points[0].Predicted)
	}
	if math.Abs(result.Points[1].Predicted-50.0) > 1e-6 {
		t.Errorf("day 5 forecast = %v, want 50.0", result.Points[1].Predicted)
	}
	if result.Accuracy == nil || math.Abs(*result.Accuracy-1.0) > 1e-9 {
		t.Errorf("Accuracy = %v, want 1.0 for a perfect fit", result.Accuracy)
	}
	// An exact fit still yields bounds, collapsed onto the forecast.
	if result.Points[0].Lower == nil || result.Points[0].Upper == nil {
		t.Error("expected confidence bounds with 3 data points")
	}
}

func TestLinearPredictor_ForecastDates(t *testing.T) {
	txs := dailyExpenses(2024, 1, 28, 5, func(int) int64 { return 300 })
	series, _ := Aggregate(txs)

	result, err := NewLinearPredictor().Predict(series, 3)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	// Series ends Feb 1; forecasts run Feb 2, 3, 4 across the month turn.
	wantDays := []string{"2024-02-02", "2024-02-03", "2024-02-04"}
	for i, p := range result.Points {
		if got := p.Date.Format("2006-01-02"); got != wantDays[i] {
			t.Errorf("Points[%d].Date = %s, want %s", i, got, wantDays[i])
		}
	}
}

func TestLinearPredictor_NegativeClamp(t *testing.T) {
	// Steeply decreasing series drives the projection below zero.
	txs := dailyExpenses(2024, 4, 1, 5, func(i int) int64 { return int64(5000 - 1200*i) })
	series, _ := Aggregate(txs)

	result, err := NewLinearPredictor().Predict(series, 10)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if result.Trend != TrendDecreasing {
		t.Errorf("Trend = %q, want decreasing", result.Trend)
	}
	for i, p := range result.Points {
		if p.Predicted < 0 {
			t.Errorf("Points[%d].Predicted = %v, negative forecasts must clamp to 0", i, p.Predicted)
		}
	}
	last := result.Points[len(result.Points)-1]
	if last.Predicted != 0 {
		t.Errorf("far forecast = %v, want 0 after clamping", last.Predicted)
	}
}

func TestLinearPredictor_BoundsOmittedBelowThreePoints(t *testing.T) {
	txs := dailyExpenses(2024, 4, 1, 2, func(i int) int64 { return int64(1000 + 100*i) })
	series, _ := Aggregate(txs)

	result, err := NewLinearPredictor().Predict(series, 1)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if result.Points[0].Lower != nil || result.Points[0].Upper != nil {
		t.Error("bounds must be omitted for a two-point series, not fabricated")
	}
}

func TestLinearPredictor_ConfidenceBandWidth(t *testing.T) {
	// Noisy but non-degenerate series.
	amounts := []int64{1000, 1400, 900, 1600, 1100, 1700, 1000}
	txs := dailyExpenses(2024, 4, 1, len(amounts), func(i int) int64 { return amounts[i] })
	series, _ := Aggregate(txs)

	p := NewLinearPredictorWith(2.0, 0)
	result, err := p.Predict(series, 1)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	pt := result.Points[0]
	if pt.Lower == nil || pt.Upper == nil {
		t.Fatal("expected bounds for a 7-point series")
	}
	if *pt.Upper <= *pt.Lower {
		t.Errorf("Upper (%v) must exceed Lower (%v) for noisy data", *pt.Upper, *pt.Lower)
	}
	mid := (*pt.Upper + *pt.Lower) / 2
	if math.Abs(mid-pt.Predicted) > 1e-6 {
		t.Errorf("band midpoint %v should equal the un-clamped forecast %v", mid, pt.Predicted)
	}
}

func TestLinearPredictor_Errors(t *testing.T) {
	oneDay, _ := Aggregate(dailyExpenses(2024, 1, 1, 1, func(int) int64 { return 500 }))
	tenDays, _ := Aggregate(dailyExpenses(2024, 1, 1, 10, func(int) int64 { return 500 }))

	tests := []struct {
		name      string
		series    DailySeries
		daysAhead int
		wantErr   error
	}{
		{name: "single day series", series: oneDay, daysAhead: 5, wantErr: ErrInsufficientData},
		{name: "days_ahead zero", series: tenDays, daysAhead: 0, wantErr: ErrInvalidParameter},
		{name: "days_ahead negative", series: tenDays, daysAhead: -3, wantErr: ErrInvalidParameter},
		{name: "days_ahead over max", series: tenDays, daysAhead: 366, wantErr: ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinearPredictor().Predict(tt.series, tt.daysAhead)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Predict() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLinearPredictor_AccuracyNeverNaN(t *testing.T) {
	// All-zero series: zero variance and zero mean.
	txs := dailyExpenses(2024, 1, 1, 5, func(int) int64 { return 0 })
	series, _ := Aggregate(txs)

	result, err := NewLinearPredictor().Predict(series, 3)
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if result.Accuracy == nil || math.IsNaN(*result.Accuracy) {
		t.Fatalf("Accuracy = %v, must be a finite number", result.Accuracy)
	}
	if result.Trend != TrendStable {
		t.Errorf("Trend = %q, want stable for an all-zero series", result.Trend)
	}
}
