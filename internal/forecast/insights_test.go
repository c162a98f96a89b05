package forecast

import (
	"errors"
	"strings"
	"testing"

	"spendcast/internal/core"
)

func TestInsightAggregator_Aggregate(t *testing.T) {
	agg := NewInsightAggregator(nil)

	t.Run("empty collection", func(t *testing.T) {
		_, err := agg.Aggregate(map[string][]core.Transaction{}, 30)
		if !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("Aggregate(empty) = %v, want ErrInsufficientData", err)
		}
	})

	t.Run("invalid days ahead", func(t *testing.T) {
		byCategory := map[string][]core.Transaction{
			"groceries": dailyExpenses(2024, 1, 1, 5, func(int) int64 { return 500 }),
		}
		_, err := agg.Aggregate(byCategory, 0)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("Aggregate(days_ahead=0) = %v, want ErrInvalidParameter", err)
		}
	})

	t.Run("single transaction category skipped", func(t *testing.T) {
		byCategory := map[string][]core.Transaction{
			"groceries": dailyExpenses(2024, 1, 1, 10, func(int) int64 { return 500 }),
			"gadgets":   {expenseOn(2024, 1, 2, 99900, "gadgets")},
		}
		result, err := agg.Aggregate(byCategory, 30)
		if err != nil {
			t.Fatalf("Aggregate() error: %v", err)
		}
		if len(result.Categories) != 1 {
			t.Fatalf("len(Categories) = %d, want 1 (gadgets skipped, call succeeds)", len(result.Categories))
		}
		if result.Categories[0].Category != "groceries" {
			t.Errorf("Categories[0] = %q, want groceries", result.Categories[0].Category)
		}
	})

	t.Run("degenerate category skipped", func(t *testing.T) {
		// Two transactions on the same single day: aggregation succeeds
		// but the linear fit needs two distinct days.
		byCategory := map[string][]core.Transaction{
			"groceries": dailyExpenses(2024, 1, 1, 10, func(int) int64 { return 500 }),
			"one-day": {
				expenseOn(2024, 1, 5, 100, "one-day"),
				expenseOn(2024, 1, 5, 200, "one-day"),
			},
		}
		result, err := agg.Aggregate(byCategory, 30)
		if err != nil {
			t.Fatalf("Aggregate() error: %v", err)
		}
		if len(result.Categories) != 1 {
			t.Fatalf("len(Categories) = %d, want 1", len(result.Categories))
		}
	})

	t.Run("majority vote and totals", func(t *testing.T) {
		byCategory := map[string][]core.Transaction{
			"rising-a": dailyExpenses(2024, 1, 1, 10, func(i int) int64 { return int64(100 * (i + 1)) }),
			"rising-b": dailyExpenses(2024, 1, 1, 10, func(i int) int64 { return int64(50 * (i + 2)) }),
			"flat":     dailyExpenses(2024, 1, 1, 10, func(int) int64 { return 400 }),
		}
		result, err := agg.Aggregate(byCategory, 5)
		if err != nil {
			t.Fatalf("Aggregate() error: %v", err)
		}
		if len(result.Categories) != 3 {
			t.Fatalf("len(Categories) = %d, want 3", len(result.Categories))
		}
		if result.OverallTrend != TrendIncreasing {
			t.Errorf("OverallTrend = %q, want increasing (2 rising vs 0 falling)", result.OverallTrend)
		}
		var sum float64
		for _, c := range result.Categories {
			sum += c.PredictedAvg * 5
		}
		if diff := result.TotalPredicted - sum; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("TotalPredicted = %v, want the sum of per-category totals %v", result.TotalPredicted, sum)
		}
		// Deterministic output order by category name.
		for i := 1; i < len(result.Categories); i++ {
			if result.Categories[i-1].Category > result.Categories[i].Category {
				t.Errorf("categories not sorted: %q before %q",
					result.Categories[i-1].Category, result.Categories[i].Category)
			}
		}
	})

	t.Run("tie resolves to stable", func(t *testing.T) {
		byCategory := map[string][]core.Transaction{
			"rising":  dailyExpenses(2024, 1, 1, 10, func(i int) int64 { return int64(100 * (i + 1)) }),
			"falling": dailyExpenses(2024, 1, 1, 10, func(i int) int64 { return int64(100 * (10 - i)) }),
		}
		result, err := agg.Aggregate(byCategory, 5)
		if err != nil {
			t.Fatalf("Aggregate() error: %v", err)
		}
		if result.OverallTrend != TrendStable {
			t.Errorf("OverallTrend = %q, want stable on a 1-1 tie", result.OverallTrend)
		}
	})

	t.Run("all skipped still succeeds", func(t *testing.T) {
		byCategory := map[string][]core.Transaction{
			"gadgets": {expenseOn(2024, 1, 2, 99900, "gadgets")},
		}
		result, err := agg.Aggregate(byCategory, 30)
		if err != nil {
			t.Fatalf("Aggregate() error: %v", err)
		}
		if len(result.Categories) != 0 {
			t.Errorf("len(Categories) = %d, want 0", len(result.Categories))
		}
		if result.OverallTrend != TrendStable {
			t.Errorf("OverallTrend = %q, want stable with zero categories", result.OverallTrend)
		}
	})
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		name         string
		trend        Trend
		predictedAvg float64
		currentAvg   float64
		contains     string
	}{
		{name: "increasing includes percentage", trend: TrendIncreasing, predictedAvg: 12, currentAvg: 10, contains: "20.0%"},
		{name: "increasing zero current guards to 0", trend: TrendIncreasing, predictedAvg: 12, currentAvg: 0, contains: "0.0%"},
		{name: "decreasing includes percentage", trend: TrendDecreasing, predictedAvg: 8, currentAvg: 10, contains: "20.0%"},
		{name: "decreasing zero current guards to 0", trend: TrendDecreasing, predictedAvg: 8, currentAvg: 0, contains: "0.0%"},
		{name: "stable fixed message", trend: TrendStable, predictedAvg: 10, currentAvg: 10, contains: "stable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommendation(tt.trend, tt.predictedAvg, tt.currentAvg)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Recommendation(%q, %v, %v) = %q, want it to contain %q",
					tt.trend, tt.predictedAvg, tt.currentAvg, got, tt.contains)
			}
		})
	}
}
