// Package query provides read-only filtered views over the ledger. The
// engine never mutates and never returns live references.
package query

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bankgraph/internal/core"
	"bankgraph/internal/ledger"
)

// Filter describes one query. Zero-valued fields are ignored; the fields
// that are set all apply together (conjunctive). The historical behavior of
// picking a single predicate class per call is intentionally gone.
type Filter struct {
	SourceID      string
	DestinationID string
	Start         *time.Time
	End           *time.Time
	Category      string
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}

type Engine struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Engine {
	return &Engine{ledger: l}
}

// Transactions returns every transaction matching the filter in insertion
// order. Unknown account ids match nothing rather than failing.
func (e *Engine) Transactions(f Filter) ([]core.Transaction, error) {
	if f.Start != nil && f.End != nil {
		if err := core.ValidatePeriod(*f.Start, *f.End); err != nil {
			return nil, err
		}
	}

	// Pair lookups can start from the edge history instead of the full log.
	var candidates []core.Transaction
	switch {
	case f.SourceID != "" && f.DestinationID != "":
		candidates = e.ledger.TransactionsBetween(f.SourceID, f.DestinationID)
	case f.SourceID != "" || f.DestinationID != "":
		id := f.SourceID
		if id == "" {
			id = f.DestinationID
		}
		candidates = e.ledger.TransactionsForAccount(id)
	default:
		candidates = e.ledger.Transactions()
	}

	var out []core.Transaction
	for _, tx := range candidates {
		if f.matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f Filter) matches(tx core.Transaction) bool {
	if f.SourceID != "" && tx.SourceID != f.SourceID {
		return false
	}
	if f.DestinationID != "" && tx.DestinationID != f.DestinationID {
		return false
	}
	if f.Start != nil && tx.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && tx.Timestamp.After(*f.End) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(tx.Category, f.Category) {
		return false
	}
	if f.MinAmount != nil && tx.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && tx.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

// TransactionsBetween is the exact pair lookup, optionally bounded to an
// inclusive [start, end] window when both bounds are non-nil.
func (e *Engine) TransactionsBetween(source, destination string, start, end *time.Time) ([]core.Transaction, error) {
	return e.Transactions(Filter{
		SourceID:      source,
		DestinationID: destination,
		Start:         start,
		End:           end,
	})
}

// ByCategory matches the category label case-insensitively.
func (e *Engine) ByCategory(category string) []core.Transaction {
	out, _ := e.Transactions(Filter{Category: category})
	return out
}

// ByAmountRange returns transactions with amount in [min, max] inclusive.
func (e *Engine) ByAmountRange(min, max decimal.Decimal) []core.Transaction {
	out, _ := e.Transactions(Filter{MinAmount: &min, MaxAmount: &max})
	return out
}

// SearchAccounts finds accounts whose owner or bank name contains the text,
// case-insensitively.
func (e *Engine) SearchAccounts(text string) []core.Account {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}

	var out []core.Account
	for _, a := range e.ledger.Accounts() {
		if strings.Contains(strings.ToLower(a.OwnerName), needle) ||
			strings.Contains(strings.ToLower(a.BankName), needle) {
			out = append(out, a)
		}
	}
	return out
}
