// Package store defines the ports the forecasting service uses to
// reach transaction data. The engine itself never touches these; it
// receives an already-fetched snapshot.
package store

import (
	"context"

	"spendcast/internal/core"
)

type (
	// TransactionWriter ingests a single transaction for a user.
	TransactionWriter interface {
		Append(ctx context.Context, userID string, tx core.Transaction) (ref string, err error)
	}

	// TransactionReader returns a user's transactions, optionally
	// filtered by category (empty string means all categories). Order
	// is unspecified; the aggregator sorts by date itself.
	TransactionReader interface {
		ListByUser(ctx context.Context, userID, category string) ([]core.Transaction, error)
	}
)
