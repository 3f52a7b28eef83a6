package graph

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bankgraph/internal/core"
	"bankgraph/internal/ledger"
)

func record(t *testing.T, l *ledger.Ledger, id, source, destination string, amount int64) {
	t.Helper()
	_, err := l.RecordTransaction(core.Transaction{
		TransactionID: id,
		SourceID:      source,
		DestinationID: destination,
		Amount:        decimal.NewFromInt(amount),
		Timestamp:     time.Now(),
		Status:        core.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("record %s: %v", id, err)
	}
}

func TestShortestPathByCumulativeAmount(t *testing.T) {
	l := ledger.New()
	record(t, l, "t1", "A", "B", 10)
	record(t, l, "t2", "B", "C", 5)
	record(t, l, "t3", "A", "C", 100)

	path, total := New(l).ShortestPath("A", "C")
	if !reflect.DeepEqual(path, []string{"A", "B", "C"}) {
		t.Fatalf("path = %v, want [A B C]", path)
	}
	if !total.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("total = %s, want 15", total)
	}
}

func TestShortestPathFollowsDirection(t *testing.T) {
	l := ledger.New()
	record(t, l, "t1", "A", "B", 10)

	if path, _ := New(l).ShortestPath("B", "A"); path != nil {
		t.Fatalf("no directed path B->A, got %v", path)
	}
}

func TestShortestPathUnknownAndTrivial(t *testing.T) {
	l := ledger.New()
	record(t, l, "t1", "A", "B", 10)
	a := New(l)

	if path, _ := a.ShortestPath("A", "nope"); path != nil {
		t.Errorf("unknown destination should be empty, got %v", path)
	}
	path, total := a.ShortestPath("A", "A")
	if !reflect.DeepEqual(path, []string{"A"}) || !total.IsZero() {
		t.Errorf("trivial path wrong: %v %s", path, total)
	}
}

func TestConnectedIgnoresDirection(t *testing.T) {
	l := ledger.New()
	record(t, l, "t1", "A", "B", 10)
	record(t, l, "t2", "C", "B", 10)
	if err := l.RegisterAccount(core.Account{AccountID: "Z"}); err != nil {
		t.Fatal(err)
	}
	a := New(l)

	if !a.Connected("A", "C") {
		t.Error("A and C share B when direction is ignored")
	}
	if !a.Connected("B", "B") {
		t.Error("an account is connected to itself")
	}
	if a.Connected("Z", "A") || a.Connected("A", "Z") {
		t.Error("isolated account must not be connected to anything")
	}
	if a.Connected("A", "ghost") {
		t.Error("unknown id must not be connected")
	}
}

func TestComponents(t *testing.T) {
	l := ledger.New()
	record(t, l, "t1", "A", "B", 10)
	record(t, l, "t2", "C", "D", 10)
	if err := l.RegisterAccount(core.Account{AccountID: "Z"}); err != nil {
		t.Fatal(err)
	}

	got := New(l).Components()
	want := [][]string{{"A", "B"}, {"C", "D"}, {"Z"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("components = %v, want %v", got, want)
	}
}

func TestMostConnected(t *testing.T) {
	l := ledger.New()
	// B: edges A->B, B->C, C->B => degree 3. A: 1, C: 2.
	record(t, l, "t1", "A", "B", 10)
	record(t, l, "t2", "B", "C", 10)
	record(t, l, "t3", "C", "B", 10)
	a := New(l)

	top := a.MostConnected(2)
	if len(top) != 2 || top[0].AccountID != "B" || top[0].Degree != 3 {
		t.Fatalf("most connected wrong: %+v", top)
	}
	if top[1].AccountID != "C" || top[1].Degree != 2 {
		t.Fatalf("second rank wrong: %+v", top[1])
	}

	if got := a.MostConnected(10); len(got) != 3 {
		t.Errorf("n beyond account count should clamp, got %d", len(got))
	}
	if got := a.MostConnected(0); got != nil {
		t.Errorf("n=0 should be empty, got %v", got)
	}
}
