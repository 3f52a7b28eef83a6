package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// PairKey is the ordered (source, destination) account pair identifying an
// aggregated edge. The reverse direction is a distinct edge.
type PairKey struct {
	Source      string
	Destination string
}

// AggregatedEdge accumulates every transaction sharing one ordered account
// pair. Created lazily on the first transaction for the pair; TotalAmount and
// TransactionCount only ever grow.
type AggregatedEdge struct {
	Source           string
	Destination      string
	TotalAmount      decimal.Decimal
	TransactionCount int
	LastTransaction  time.Time
}

func (e AggregatedEdge) Key() PairKey {
	return PairKey{Source: e.Source, Destination: e.Destination}
}

func newEdge(key PairKey) *AggregatedEdge {
	return &AggregatedEdge{
		Source:      key.Source,
		Destination: key.Destination,
		TotalAmount: decimal.Zero,
	}
}

func (e *AggregatedEdge) add(amount decimal.Decimal, at time.Time) {
	e.TotalAmount = e.TotalAmount.Add(amount)
	e.TransactionCount++
	if at.After(e.LastTransaction) {
		e.LastTransaction = at
	}
}

// Snapshot is a point-in-time copy of the network shape, taken under the
// ledger read lock so long-running analytics see a consistent graph.
type Snapshot struct {
	Accounts []string
	Edges    []AggregatedEdge
}
