package forecast

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. Callers match with errors.Is and
// map them to transport semantics (no data -> not found, bad parameter
// -> bad request, unavailable model -> service unavailable).
var (
	// ErrInsufficientData means there are no usable data points to
	// aggregate, or fewer than two distinct days for a linear fit.
	ErrInsufficientData = errors.New("insufficient transaction data")

	// ErrInsufficientHistory means the series is shorter than the
	// sequence model's lookback window plus one training target.
	ErrInsufficientHistory = errors.New("insufficient history for sequence model")

	// ErrInvalidParameter covers out-of-range days_ahead and unknown
	// model types.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrModelUnavailable is returned when the sequence model is
	// requested but disabled in this runtime. The engine never
	// substitutes a different model for an explicitly requested one.
	ErrModelUnavailable = errors.New("sequence model not available")
)

func errInvalidDaysAhead(daysAhead int) error {
	return fmt.Errorf("%w: days_ahead must be between %d and %d, got %d",
		ErrInvalidParameter, MinDaysAhead, MaxDaysAhead, daysAhead)
}

