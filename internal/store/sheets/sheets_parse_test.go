package sheets

import "testing"

func TestParseTransactionRow(t *testing.T) {
	tests := []struct {
		name      string
		cols      []string
		wantOK    bool
		wantUser  string
		wantCents int64
	}{
		{
			name:      "valid expense row",
			cols:      []string{"alice", "2026-01-15", "12.50", "food", "expense"},
			wantOK:    true,
			wantUser:  "alice",
			wantCents: 1250,
		},
		{
			name:      "decimal comma",
			cols:      []string{"bob", "2026-02-01", "7,25", "transport", "expense"},
			wantOK:    true,
			wantUser:  "bob",
			wantCents: 725,
		},
		{
			name:      "income row",
			cols:      []string{"alice", "2026-01-01", "3000", "salary", "income"},
			wantOK:    true,
			wantUser:  "alice",
			wantCents: 300000,
		},
		{
			name:   "header row",
			cols:   []string{"user_id", "date", "amount", "category", "type"},
			wantOK: false,
		},
		{
			name:   "too few columns",
			cols:   []string{"alice", "2026-01-15", "12.50"},
			wantOK: false,
		},
		{
			name:   "empty user",
			cols:   []string{"", "2026-01-15", "12.50", "food", "expense"},
			wantOK: false,
		},
		{
			name:   "bad amount",
			cols:   []string{"alice", "2026-01-15", "abc", "food", "expense"},
			wantOK: false,
		},
		{
			name:   "unknown type",
			cols:   []string{"alice", "2026-01-15", "12.50", "food", "transfer"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, user, ok := parseTransactionRow(tt.cols)
			if ok != tt.wantOK {
				t.Fatalf("parseTransactionRow() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if user != tt.wantUser {
				t.Errorf("user = %q, want %q", user, tt.wantUser)
			}
			if tx.Amount.Cents != tt.wantCents {
				t.Errorf("cents = %d, want %d", tx.Amount.Cents, tt.wantCents)
			}
		})
	}
}

func TestParseAmountToCents_FloatFallback(t *testing.T) {
	// Sheets can return numeric cells in scientific notation.
	cents, ok := parseAmountToCents("1.25e1")
	if !ok {
		t.Fatal("parseAmountToCents() should accept raw floats")
	}
	if cents != 1250 {
		t.Errorf("cents = %d, want 1250", cents)
	}

	if _, ok := parseAmountToCents("-5"); ok {
		t.Error("parseAmountToCents() should reject negative amounts")
	}
}
