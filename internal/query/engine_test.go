package query

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bankgraph/internal/core"
	"bankgraph/internal/ledger"
)

func seed(t *testing.T) *Engine {
	t.Helper()
	l := ledger.New()

	accounts := []core.Account{
		{AccountID: "A", OwnerName: "Alice Johnson", BankName: "First National"},
		{AccountID: "B", OwnerName: "Bob Smith", BankName: "Union Credit"},
		{AccountID: "C", OwnerName: "Carla Diaz", BankName: "First National"},
	}
	for _, a := range accounts {
		if err := l.RegisterAccount(a); err != nil {
			t.Fatal(err)
		}
	}

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{TransactionID: "t1", SourceID: "A", DestinationID: "B", Amount: decimal.NewFromInt(100), Timestamp: base, Category: "TRANSFER", Status: core.StatusCompleted},
		{TransactionID: "t2", SourceID: "A", DestinationID: "B", Amount: decimal.NewFromInt(50), Timestamp: base.AddDate(0, 0, 2), Category: "payment", Status: core.StatusCompleted},
		{TransactionID: "t3", SourceID: "B", DestinationID: "C", Amount: decimal.NewFromInt(250), Timestamp: base.AddDate(0, 0, 4), Category: "TRANSFER", Status: core.StatusCompleted},
	}
	for _, tx := range txs {
		if _, err := l.RecordTransaction(tx); err != nil {
			t.Fatal(err)
		}
	}
	return New(l)
}

func TestPairLookup(t *testing.T) {
	e := seed(t)

	got, err := e.TransactionsBetween("A", "B", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].TransactionID != "t1" || got[1].TransactionID != "t2" {
		t.Fatalf("pair lookup wrong: %+v", got)
	}

	// Unknown ids are empty results, not errors.
	got, err = e.TransactionsBetween("A", "nope", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("unknown destination should be empty, got %d", len(got))
	}
}

func TestPairLookupWindow(t *testing.T) {
	e := seed(t)
	start := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)

	got, err := e.TransactionsBetween("A", "B", &start, &end)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TransactionID != "t2" {
		t.Fatalf("windowed pair lookup wrong: %+v", got)
	}

	if _, err := e.TransactionsBetween("A", "B", &end, &start); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("inverted window: expected ErrInvalidPeriod, got %v", err)
	}
}

func TestByCategoryCaseInsensitive(t *testing.T) {
	e := seed(t)
	if got := e.ByCategory("transfer"); len(got) != 2 {
		t.Errorf("category transfer: got %d, want 2", len(got))
	}
	if got := e.ByCategory("PAYMENT"); len(got) != 1 {
		t.Errorf("category PAYMENT: got %d, want 1", len(got))
	}
	if got := e.ByCategory("salary"); len(got) != 0 {
		t.Errorf("unknown category: got %d, want 0", len(got))
	}
}

func TestByAmountRangeInclusive(t *testing.T) {
	e := seed(t)
	got := e.ByAmountRange(decimal.NewFromInt(60), decimal.NewFromInt(200))
	if len(got) != 1 || got[0].TransactionID != "t1" {
		t.Fatalf("range [60,200] should match only the 100 transaction: %+v", got)
	}

	// Bounds are inclusive.
	got = e.ByAmountRange(decimal.NewFromInt(50), decimal.NewFromInt(100))
	if len(got) != 2 {
		t.Errorf("range [50,100]: got %d, want 2", len(got))
	}
}

func TestConjunctiveFilter(t *testing.T) {
	e := seed(t)
	min := decimal.NewFromInt(40)
	got, err := e.Transactions(Filter{SourceID: "A", Category: "TRANSFER", MinAmount: &min})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TransactionID != "t1" {
		t.Fatalf("conjunctive filter should intersect all constraints: %+v", got)
	}
}

func TestSearchAccounts(t *testing.T) {
	e := seed(t)

	cases := []struct {
		text string
		want int
	}{
		{"alice", 1},
		{"first national", 2},
		{"SMITH", 1},
		{"nobody", 0},
		{"  ", 0},
	}
	for _, tc := range cases {
		if got := e.SearchAccounts(tc.text); len(got) != tc.want {
			t.Errorf("search %q: got %d, want %d", tc.text, len(got), tc.want)
		}
	}
}
