// Package forecast turns raw transaction history into daily spending
// forecasts, trend classifications and cross-category insights. All
// functions are pure: every call re-aggregates and re-fits from its
// inputs, no state survives between calls.
package forecast

import (
	"time"

	"spendcast/internal/core"
)

// DailySeries is a contiguous, gap-filled per-day aggregation of
// expense amounts. Amounts[i] is the total spent on Start plus i days;
// days with no transactions hold 0.
type DailySeries struct {
	Start   time.Time
	Amounts []float64
}

func (s DailySeries) Len() int {
	return len(s.Amounts)
}

// Day returns the calendar date of the i-th entry.
func (s DailySeries) Day(i int) time.Time {
	return s.Start.AddDate(0, 0, i)
}

// Mean returns the average daily amount, 0 for an empty series.
func (s DailySeries) Mean() float64 {
	if len(s.Amounts) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.Amounts {
		sum += v
	}
	return sum / float64(len(s.Amounts))
}

// Aggregate builds a DailySeries from an unordered transaction list.
// Non-expense rows are ignored; amounts on the same calendar day are
// summed; every day between the first and last transaction is present.
// Returns ErrInsufficientData when no expense rows exist.
func Aggregate(txs []core.Transaction) (DailySeries, error) {
	byDay := make(map[time.Time]float64)
	var minDay, maxDay time.Time
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		day := tx.Date.Day()
		byDay[day] += tx.Amount.Amount()
		if minDay.IsZero() || day.Before(minDay) {
			minDay = day
		}
		if maxDay.IsZero() || day.After(maxDay) {
			maxDay = day
		}
	}
	if len(byDay) == 0 {
		return DailySeries{}, ErrInsufficientData
	}

	days := int(maxDay.Sub(minDay).Hours()/24) + 1
	amounts := make([]float64, days)
	for i := range amounts {
		amounts[i] = byDay[minDay.AddDate(0, 0, i)]
	}
	return DailySeries{Start: minDay, Amounts: amounts}, nil
}
