// Package ledger owns the account registry and the aggregated-edge graph of
// the transaction network. It is the sole mutation point: ingestion goes
// through RegisterAccount and RecordTransaction, every read returns a copy.
//
// The append-only transaction log is authoritative. Per-account and per-edge
// index slices are derived views over it, so counts and period scans never
// need a dedup pass.
package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bankgraph/internal/core"
)

type Ledger struct {
	mu sync.RWMutex

	accounts map[string]core.Account
	log      []core.Transaction
	seen     map[string]struct{}

	byAccount map[string][]int
	byEdge    map[PairKey][]int
	edges     map[PairKey]*AggregatedEdge
}

func New() *Ledger {
	return &Ledger{
		accounts:  make(map[string]core.Account),
		seen:      make(map[string]struct{}),
		byAccount: make(map[string][]int),
		byEdge:    make(map[PairKey][]int),
		edges:     make(map[PairKey]*AggregatedEdge),
	}
}

// RegisterAccount upserts by AccountID. Re-registering an existing id
// overwrites the stored value and leaves histories untouched.
func (l *Ledger) RegisterAccount(account core.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("register account: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[account.AccountID] = account
	return nil
}

// RecordTransaction validates tx, auto-registers missing endpoint accounts,
// and applies the compound update (edge totals plus the three history
// indices) as one atomic unit under the ledger lock. It returns the
// transaction's position in the authoritative log. Self-transfers are
// rejected, as are duplicate transaction ids.
func (l *Ledger) RecordTransaction(tx core.Transaction) (int, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("record transaction: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[tx.TransactionID]; dup {
		return 0, fmt.Errorf("record transaction %s: %w", tx.TransactionID, core.ErrDuplicateTransaction)
	}

	for _, id := range []string{tx.SourceID, tx.DestinationID} {
		if _, ok := l.accounts[id]; !ok {
			l.accounts[id] = core.Account{AccountID: id, CreatedAt: tx.Timestamp}
		}
	}

	key := PairKey{Source: tx.SourceID, Destination: tx.DestinationID}
	edge, ok := l.edges[key]
	if !ok {
		edge = newEdge(key)
		l.edges[key] = edge
	}
	edge.add(tx.Amount, tx.Timestamp)

	idx := len(l.log)
	l.log = append(l.log, tx)
	l.seen[tx.TransactionID] = struct{}{}
	l.byAccount[tx.SourceID] = append(l.byAccount[tx.SourceID], idx)
	l.byAccount[tx.DestinationID] = append(l.byAccount[tx.DestinationID], idx)
	l.byEdge[key] = append(l.byEdge[key], idx)

	return idx, nil
}

// Account returns the stored account for id.
func (l *Ledger) Account(id string) (core.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.accounts[id]
	return a, ok
}

// Accounts returns a copy of all registered accounts, ordered by id.
func (l *Ledger) Accounts() []core.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// TransactionsBetween returns the edge history for the ordered (source,
// destination) pair in insertion order. Empty when no edge exists.
func (l *Ledger) TransactionsBetween(source, destination string) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byEdge[PairKey{Source: source, Destination: destination}])
}

// TotalTransferred returns the cumulative amount for the ordered pair, or
// zero when no edge exists.
func (l *Ledger) TotalTransferred(source, destination string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if edge, ok := l.edges[PairKey{Source: source, Destination: destination}]; ok {
		return edge.TotalAmount
	}
	return decimal.Zero
}

// Edge returns a copy of the aggregated edge for the ordered pair.
func (l *Ledger) Edge(source, destination string) (AggregatedEdge, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if edge, ok := l.edges[PairKey{Source: source, Destination: destination}]; ok {
		return *edge, true
	}
	return AggregatedEdge{}, false
}

// Edges returns copies of all aggregated edges, ordered by (source,
// destination) for reproducible iteration.
func (l *Ledger) Edges() []AggregatedEdge {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.edgesLocked()
}

func (l *Ledger) edgesLocked() []AggregatedEdge {
	out := make([]AggregatedEdge, 0, len(l.edges))
	for _, e := range l.edges {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Destination < out[j].Destination
	})
	return out
}

// TransactionsForAccount returns every transaction touching the account as
// source or destination, in insertion order.
func (l *Ledger) TransactionsForAccount(id string) []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byAccount[id])
}

// Transactions returns a copy of the full authoritative log in insertion
// order.
func (l *Ledger) Transactions() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.Transaction, len(l.log))
	copy(out, l.log)
	return out
}

// TransactionsInPeriod returns transactions with timestamps in the inclusive
// [start, end] window. Scanning the authoritative log means each transaction
// is considered exactly once even though both endpoints index it.
func (l *Ledger) TransactionsInPeriod(start, end time.Time) ([]core.Transaction, error) {
	if err := core.ValidatePeriod(start, end); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range l.log {
		if tx.InPeriod(start, end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// MostActiveAccount returns the account with the longest history. Ties break
// by ascending account id so results are reproducible.
func (l *Ledger) MostActiveAccount() (core.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var (
		best     core.Account
		bestSize = -1
		found    bool
	)
	for id, a := range l.accounts {
		size := len(l.byAccount[id])
		if size > bestSize || (size == bestSize && id < best.AccountID) {
			best, bestSize, found = a, size, true
		}
	}
	return best, found
}

// TotalAmountTransferred sums TotalAmount over all aggregated edges.
func (l *Ledger) TotalAmountTransferred() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, e := range l.edges {
		total = total.Add(e.TotalAmount)
	}
	return total
}

func (l *Ledger) AccountCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

// TransactionCount is the size of the authoritative log, not the sum of
// per-account history lengths (which counts every transaction twice).
func (l *Ledger) TransactionCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.log)
}

// Snapshot captures the graph shape for analytics under one read lock.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.accounts))
	for id := range l.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return Snapshot{Accounts: ids, Edges: l.edgesLocked()}
}

// VerifyIntegrity recomputes every aggregate from the authoritative log and
// reports the first mismatch. Unreachable in correct code; exists so tests
// and operators can assert the invariants directly.
func (l *Ledger) VerifyIntegrity() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, tx := range l.log {
		for _, id := range []string{tx.SourceID, tx.DestinationID} {
			if _, ok := l.accounts[id]; !ok {
				return fmt.Errorf("transaction %s references unknown account %s: %w",
					tx.TransactionID, id, core.ErrInconsistentLedger)
			}
		}
	}

	for key, edge := range l.edges {
		sum := decimal.Zero
		indices := l.byEdge[key]
		for _, i := range indices {
			sum = sum.Add(l.log[i].Amount)
		}
		if edge.TransactionCount != len(indices) {
			return fmt.Errorf("edge %s->%s count %d, history %d: %w",
				key.Source, key.Destination, edge.TransactionCount, len(indices), core.ErrInconsistentLedger)
		}
		if edge.TransactionCount == 0 {
			return fmt.Errorf("edge %s->%s has zero transactions: %w",
				key.Source, key.Destination, core.ErrInconsistentLedger)
		}
		if !edge.TotalAmount.Equal(sum) {
			return fmt.Errorf("edge %s->%s total %s, history sum %s: %w",
				key.Source, key.Destination, edge.TotalAmount, sum, core.ErrInconsistentLedger)
		}
	}

	indexed := 0
	for _, indices := range l.byAccount {
		indexed += len(indices)
	}
	if indexed != 2*len(l.log) {
		return fmt.Errorf("account indices hold %d entries for %d transactions: %w",
			indexed, len(l.log), core.ErrInconsistentLedger)
	}
	return nil
}

func (l *Ledger) collect(indices []int) []core.Transaction {
	out := make([]core.Transaction, 0, len(indices))
	for _, i := range indices {
		out = append(out, l.log[i])
	}
	return out
}
