package sheets

import (
	"strconv"
	"strings"

	"spendcast/internal/core"
)

// parseTransactionRow converts one sheet row (user_id, date, amount,
// category, type) into a transaction. Returns ok=false for headers,
// blank lines and rows that do not validate.
func parseTransactionRow(cols []string) (core.Transaction, string, bool) {
	if len(cols) < 5 {
		return core.Transaction{}, "", false
	}

	userID := cols[0]
	if userID == "" {
		return core.Transaction{}, "", false
	}

	date, err := core.ParseDate(cols[1])
	if err != nil {
		// Header row or free-form text.
		return core.Transaction{}, "", false
	}

	cents, ok := parseAmountToCents(cols[2])
	if !ok {
		return core.Transaction{}, "", false
	}

	tx := core.Transaction{
		Date:     date,
		Amount:   core.Money{Cents: cents},
		Category: cols[3],
		Type:     core.TransactionType(cols[4]),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, "", false
	}
	return tx, userID, true
}

// parseAmountToCents accepts both the canonical decimal format and the
// raw floats Sheets returns for numeric cells.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if cents, err := core.ParseDecimalToCents(s); err == nil {
		return cents, true
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64(f*100.0 + 0.5), true
}
