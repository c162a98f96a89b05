package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single dated, categorized money movement.
	// Only expense transactions are forecast-relevant; income rows are
	// tolerated on input and filtered by the aggregation step.
	Transaction struct {
		Date     Date
		Amount   Money
		Category string
		Type     TransactionType
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrUnknownTxType = errors.New("unknown transaction type")
)

// NewDate creates a Date at UTC midnight for the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Day returns the UTC calendar day the date falls on, at midnight.
// Two transactions on the same day normalize to the same Day value.
func (d Date) Day() time.Time {
	y, m, dd := d.UTC().Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as ISO-8601 (YYYY-MM-DD).
func (d Date) String() string {
	return d.UTC().Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	default:
		return ErrUnknownTxType
	}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return t.Type.Validate()
}
