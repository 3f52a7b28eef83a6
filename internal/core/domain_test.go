package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAccountValidate(t *testing.T) {
	if err := (Account{AccountID: "ACC-1"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{AccountID: "   "}).Validate(); !errors.Is(err, ErrEmptyAccountID) {
		t.Fatalf("expected ErrEmptyAccountID, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		TransactionID: "TXN-1",
		SourceID:      "ACC-1",
		DestinationID: "ACC-2",
		Amount:        decimal.NewFromInt(100),
		Timestamp:     time.Now(),
		Status:        StatusCompleted,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(tx Transaction) Transaction
		want error
	}{
		{"empty id", func(tx Transaction) Transaction { tx.TransactionID = ""; return tx }, ErrEmptyTransactionID},
		{"empty source", func(tx Transaction) Transaction { tx.SourceID = ""; return tx }, ErrEmptyAccountID},
		{"empty destination", func(tx Transaction) Transaction { tx.DestinationID = " "; return tx }, ErrEmptyAccountID},
		{"self transfer", func(tx Transaction) Transaction { tx.DestinationID = tx.SourceID; return tx }, ErrSelfTransfer},
		{"zero amount", func(tx Transaction) Transaction { tx.Amount = decimal.Zero; return tx }, ErrInvalidAmount},
		{"negative amount", func(tx Transaction) Transaction { tx.Amount = decimal.NewFromInt(-5); return tx }, ErrInvalidAmount},
	}
	for _, tc := range cases {
		if err := tc.mut(good).Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestValidatePeriod(t *testing.T) {
	now := time.Now()
	if err := ValidatePeriod(now, now); err != nil {
		t.Fatalf("equal bounds should be valid, got %v", err)
	}
	if err := ValidatePeriod(now.Add(time.Hour), now); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestInPeriodInclusive(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		ts   time.Time
		want bool
	}{
		{start, true},
		{end, true},
		{start.Add(-time.Nanosecond), false},
		{end.Add(time.Nanosecond), false},
		{start.AddDate(0, 0, 15), true},
	}
	for i, tc := range cases {
		tx := Transaction{Timestamp: tc.ts}
		if got := tx.InPeriod(start, end); got != tc.want {
			t.Errorf("case %d: InPeriod = %v, want %v", i, got, tc.want)
		}
	}
}
