// Package memory provides an in-memory transaction store for local
// development and tests, optionally seeded from a CSV file.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"spendcast/internal/core"
)

type Store struct {
	mu   sync.Mutex
	txs  map[string][]core.Transaction
	seq  int
}

func New() *Store {
	return &Store{txs: make(map[string][]core.Transaction)}
}

// NewFromFiles builds a store seeded from <base>/seed_transactions.csv.
// Each line is "user,date,amount,category,type" with the date in
// YYYY-MM-DD form; malformed lines are dropped silently so a partial
// seed file still yields a usable store.
func NewFromFiles(base string) *Store {
	s := New()
	f, err := os.Open(filepath.Join(base, "seed_transactions.csv"))
	if err != nil {
		return s
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, tx, err := parseSeedLine(line)
		if err != nil {
			continue
		}
		s.txs[user] = append(s.txs[user], tx)
	}
	return s
}

func parseSeedLine(line string) (string, core.Transaction, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return "", core.Transaction{}, fmt.Errorf("want 5 fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	date, err := core.ParseDate(fields[1])
	if err != nil {
		return "", core.Transaction{}, err
	}
	cents, err := core.ParseDecimalToCents(fields[2])
	if err != nil {
		return "", core.Transaction{}, err
	}
	tx := core.Transaction{
		Date:     date,
		Amount:   core.Money{Cents: cents},
		Category: fields[3],
		Type:     core.TransactionType(fields[4]),
	}
	if err := tx.Validate(); err != nil {
		return "", core.Transaction{}, err
	}
	return fields[0], tx, nil
}

// Append stores the transaction and returns a synthetic reference.
func (s *Store) Append(_ context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[userID] = append(s.txs[userID], tx)
	s.seq++
	return fmt.Sprintf("mem:%d", s.seq), nil
}

// ListByUser returns a copy of the user's transactions, optionally
// filtered by category.
func (s *Store) ListByUser(_ context.Context, userID, category string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs[userID] {
		if category != "" && tx.Category != category {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}
