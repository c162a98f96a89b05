package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spendcast/internal/core"
)

func TestStore_AppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		Date:     core.NewDate(2024, 5, 1),
		Amount:   core.Money{Cents: 1500},
		Category: "groceries",
		Type:     core.Expense,
	}
	ref, err := s.Append(ctx, "alice", tx)
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if ref == "" {
		t.Error("Append() returned empty reference")
	}

	other := tx
	other.Category = "transport"
	if _, err := s.Append(ctx, "alice", other); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	all, err := s.ListByUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("ListByUser() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	filtered, err := s.ListByUser(ctx, "alice", "groceries")
	if err != nil {
		t.Fatalf("ListByUser(category) error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Category != "groceries" {
		t.Errorf("category filter returned %v", filtered)
	}

	none, err := s.ListByUser(ctx, "bob", "")
	if err != nil {
		t.Fatalf("ListByUser(unknown) error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unknown user returned %d transactions", len(none))
	}
}

func TestStore_RejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), "alice", core.Transaction{})
	if err == nil {
		t.Fatal("Append() accepted an invalid transaction")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	seed := `# user,date,amount,category,type
alice,2024-01-01,12.50,groceries,expense
alice,2024-01-02,3.20,coffee,expense
bob,2024-01-01,1500.00,salary,income
broken line without enough fields
alice,not-a-date,1.00,misc,expense
`
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFromFiles(dir)
	alice, _ := s.ListByUser(context.Background(), "alice", "")
	if len(alice) != 2 {
		t.Errorf("alice has %d transactions, want 2 (malformed lines dropped)", len(alice))
	}
	bob, _ := s.ListByUser(context.Background(), "bob", "")
	if len(bob) != 1 || bob[0].Type != core.Income {
		t.Errorf("bob = %v, want one income row", bob)
	}
}

func TestNewFromFiles_MissingFile(t *testing.T) {
	s := NewFromFiles(t.TempDir())
	txs, err := s.ListByUser(context.Background(), "anyone", "")
	if err != nil || len(txs) != 0 {
		t.Errorf("empty store expected, got %v, %v", txs, err)
	}
}
