package forecast

import (
	"fmt"
	"sort"

	"spendcast/internal/core"
)

// CategoryInsight summarizes one category's spending outlook.
type CategoryInsight struct {
	Category       string
	CurrentAvg     float64
	PredictedAvg   float64
	Trend          Trend
	Recommendation string
}

// InsightResult folds per-category forecasts into a portfolio view.
type InsightResult struct {
	TotalPredicted float64
	Categories     []CategoryInsight
	OverallTrend   Trend
}

// InsightAggregator runs the linear predictor per category and combines
// the results. Degenerate categories are skipped, never fatal.
type InsightAggregator struct {
	predictor *LinearPredictor
}

func NewInsightAggregator(predictor *LinearPredictor) *InsightAggregator {
	if predictor == nil {
		predictor = NewLinearPredictor()
	}
	return &InsightAggregator{predictor: predictor}
}

// Aggregate forecasts every category with at least two transactions and
// majority-votes the overall trend. Categories whose forecast fails for
// any reason are excluded rather than failing the call; only an empty
// input collection is an error. Output order is by category name.
func (a *InsightAggregator) Aggregate(byCategory map[string][]core.Transaction, daysAhead int) (*InsightResult, error) {
	if err := validateDaysAhead(daysAhead); err != nil {
		return nil, err
	}
	if len(byCategory) == 0 {
		return nil, ErrInsufficientData
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &InsightResult{}
	var increasing, decreasing int
	for _, name := range names {
		insight, total, ok := a.categoryInsight(name, byCategory[name], daysAhead)
		if !ok {
			continue
		}
		result.Categories = append(result.Categories, insight)
		result.TotalPredicted += total
		switch insight.Trend {
		case TrendIncreasing:
			increasing++
		case TrendDecreasing:
			decreasing++
		}
	}

	switch {
	case increasing > decreasing:
		result.OverallTrend = TrendIncreasing
	case decreasing > increasing:
		result.OverallTrend = TrendDecreasing
	default:
		result.OverallTrend = TrendStable
	}
	return result, nil
}

// categoryInsight returns ok=false when the category is skipped: too
// few transactions, or a forecast error on degenerate data.
func (a *InsightAggregator) categoryInsight(name string, txs []core.Transaction, daysAhead int) (CategoryInsight, float64, bool) {
	expenses := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == core.Expense {
			expenses = append(expenses, tx)
		}
	}
	if len(expenses) < 2 {
		return CategoryInsight{}, 0, false
	}

	series, err := Aggregate(expenses)
	if err != nil {
		return CategoryInsight{}, 0, false
	}
	forecast, err := a.predictor.Predict(series, daysAhead)
	if err != nil {
		return CategoryInsight{}, 0, false
	}

	var sum float64
	for _, tx := range expenses {
		sum += tx.Amount.Amount()
	}
	currentAvg := sum / float64(len(expenses))

	return CategoryInsight{
		Category:       name,
		CurrentAvg:     currentAvg,
		PredictedAvg:   forecast.AvgDaily,
		Trend:          forecast.Trend,
		Recommendation: Recommendation(forecast.Trend, forecast.AvgDaily, currentAvg),
	}, forecast.Total, true
}

// Recommendation renders advice text for a category's trend. Percentage
// changes are guarded to 0 when the current average is 0.
func Recommendation(trend Trend, predictedAvg, currentAvg float64) string {
	switch trend {
	case TrendIncreasing:
		var pct float64
		if currentAvg > 0 {
			pct = (predictedAvg - currentAvg) / currentAvg * 100
		}
		return fmt.Sprintf("Spending in this category is trending up (~%.1f%%). Consider setting a limit.", pct)
	case TrendDecreasing:
		var pct float64
		if currentAvg > 0 {
			pct = (currentAvg - predictedAvg) / currentAvg * 100
		}
		return fmt.Sprintf("Nice! Spending in this category is trending down (~%.1f%%). Keep it going!", pct)
	default:
		return "Spending in this category is stable. Keep it up!"
	}
}
