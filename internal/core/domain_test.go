package core

import (
	"errors"
	"testing"
)

func TestTransaction_Validate(t *testing.T) {
	valid := Transaction{
		Date:     NewDate(2024, 3, 15),
		Amount:   Money{Cents: 1250},
		Category: "groceries",
		Type:     Expense,
	}

	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr error
	}{
		{name: "valid expense", mutate: func(tx *Transaction) {}},
		{name: "valid income", mutate: func(tx *Transaction) { tx.Type = Income }},
		{name: "zero amount allowed", mutate: func(tx *Transaction) { tx.Amount = Money{} }},
		{
			name:    "zero date",
			mutate:  func(tx *Transaction) { tx.Date = Date{} },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = Money{Cents: -1} },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "blank category",
			mutate:  func(tx *Transaction) { tx.Category = "   " },
			wantErr: ErrEmptyCategory,
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "transfer" },
			wantErr: ErrUnknownTxType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDate_Day(t *testing.T) {
	d := NewDate(2024, 6, 1)
	late := Date{Time: d.Add(23*60*60*1e9 + 59*60*1e9)} // 23:59 same day

	if !late.Day().Equal(d.Day()) {
		t.Errorf("Day() should normalize intra-day times: %v != %v", late.Day(), d.Day())
	}
	if got := d.String(); got != "2024-06-01" {
		t.Errorf("String() = %q, want 2024-06-01", got)
	}
}

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: "12,34", want: 1234},
		{in: "12.345", want: 1234},
		{in: "12.346", want: 1235},
		{in: "0", want: 0},
		{in: ".5", want: 50},
		{in: "", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "+3", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) expected error, got %d", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoney_Amount(t *testing.T) {
	if got := (Money{Cents: 1250}).Amount(); got != 12.50 {
		t.Errorf("Amount() = %v, want 12.50", got)
	}
}
