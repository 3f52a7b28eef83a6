// Package stats derives descriptive statistics from the ledger. All methods
// are read-only and safe to call concurrently with ingestion.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bankgraph/internal/core"
	"bankgraph/internal/ledger"
)

// Summary is the shared shape of global and period statistics. Every field
// is zero-valued when there are no transactions.
type Summary struct {
	AccountCount                  int             `json:"account_count"`
	TransactionCount              int             `json:"transaction_count"`
	TotalAmount                   decimal.Decimal `json:"total_amount"`
	AverageAmount                 decimal.Decimal `json:"average_amount"`
	AverageTransactionsPerAccount float64         `json:"average_transactions_per_account"`
}

// PeriodSummary restricts a Summary to a time window; AccountCount holds the
// distinct accounts touched inside the window.
type PeriodSummary struct {
	Summary
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AccountActivity ranks one account by history length and cumulative volume.
type AccountActivity struct {
	Account          core.Account    `json:"account"`
	TransactionCount int             `json:"transaction_count"`
	TotalVolume      decimal.Decimal `json:"total_volume"`
}

// BankSummary aggregates the accounts of one bank. Each transaction counts
// once per distinct endpoint bank, so an intra-bank transfer contributes a
// single transaction and a single amount to that bank.
type BankSummary struct {
	BankName         string          `json:"bank_name"`
	AccountCount     int             `json:"account_count"`
	TransactionCount int             `json:"transaction_count"`
	TotalVolume      decimal.Decimal `json:"total_volume"`
}

type Engine struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Engine {
	return &Engine{ledger: l}
}

// General summarizes the whole ledger.
func (e *Engine) General() Summary {
	txs := e.ledger.Transactions()
	return summarize(e.ledger.AccountCount(), txs)
}

// ForPeriod summarizes transactions in the inclusive [start, end] window.
func (e *Engine) ForPeriod(start, end time.Time) (PeriodSummary, error) {
	txs, err := e.ledger.TransactionsInPeriod(start, end)
	if err != nil {
		return PeriodSummary{}, err
	}

	active := make(map[string]struct{})
	for _, tx := range txs {
		active[tx.SourceID] = struct{}{}
		active[tx.DestinationID] = struct{}{}
	}

	return PeriodSummary{
		Summary: summarize(len(active), txs),
		Start:   start,
		End:     end,
	}, nil
}

func summarize(accountCount int, txs []core.Transaction) Summary {
	s := Summary{
		AccountCount:     accountCount,
		TransactionCount: len(txs),
		TotalAmount:      decimal.Zero,
		AverageAmount:    decimal.Zero,
	}
	if len(txs) == 0 {
		return s
	}

	for _, tx := range txs {
		s.TotalAmount = s.TotalAmount.Add(tx.Amount)
	}
	// Half-up to two decimals.
	s.AverageAmount = s.TotalAmount.DivRound(decimal.NewFromInt(int64(len(txs))), 2)
	if accountCount > 0 {
		s.AverageTransactionsPerAccount = float64(len(txs)) / float64(accountCount)
	}
	return s
}

// TopByActivity ranks accounts by history length, descending. Ties break by
// ascending account id; n larger than the account count is clamped.
func (e *Engine) TopByActivity(n int) []AccountActivity {
	return e.top(n, func(a, b AccountActivity) bool {
		if a.TransactionCount != b.TransactionCount {
			return a.TransactionCount > b.TransactionCount
		}
		return a.Account.AccountID < b.Account.AccountID
	})
}

// TopByVolume ranks accounts by cumulative transaction volume, descending,
// with the same deterministic tie-break.
func (e *Engine) TopByVolume(n int) []AccountActivity {
	return e.top(n, func(a, b AccountActivity) bool {
		if !a.TotalVolume.Equal(b.TotalVolume) {
			return a.TotalVolume.GreaterThan(b.TotalVolume)
		}
		return a.Account.AccountID < b.Account.AccountID
	})
}

func (e *Engine) top(n int, less func(a, b AccountActivity) bool) []AccountActivity {
	if n <= 0 {
		return nil
	}

	accounts := e.ledger.Accounts()
	activities := make([]AccountActivity, 0, len(accounts))
	for _, a := range accounts {
		act := AccountActivity{Account: a, TotalVolume: decimal.Zero}
		for _, tx := range e.ledger.TransactionsForAccount(a.AccountID) {
			act.TransactionCount++
			act.TotalVolume = act.TotalVolume.Add(tx.Amount)
		}
		activities = append(activities, act)
	}
	sort.Slice(activities, func(i, j int) bool { return less(activities[i], activities[j]) })

	if n > len(activities) {
		n = len(activities)
	}
	return activities[:n]
}

// CategoryDistribution maps category label to transaction count, counted
// once per transaction regardless of how many accounts it touches.
func (e *Engine) CategoryDistribution() map[string]int {
	dist := make(map[string]int)
	for _, tx := range e.ledger.Transactions() {
		dist[tx.Category]++
	}
	return dist
}

// ByBank groups accounts by bank name and aggregates each bank's member
// count, transaction count and volume. A transaction whose endpoints share a
// bank is counted once for that bank. Results are ordered by bank name.
func (e *Engine) ByBank() []BankSummary {
	bankOf := make(map[string]string)
	byBank := make(map[string]*BankSummary)
	for _, a := range e.ledger.Accounts() {
		bankOf[a.AccountID] = a.BankName
		s, ok := byBank[a.BankName]
		if !ok {
			s = &BankSummary{BankName: a.BankName, TotalVolume: decimal.Zero}
			byBank[a.BankName] = s
		}
		s.AccountCount++
	}

	for _, tx := range e.ledger.Transactions() {
		banks := map[string]struct{}{
			bankOf[tx.SourceID]:      {},
			bankOf[tx.DestinationID]: {},
		}
		for bank := range banks {
			if s, ok := byBank[bank]; ok {
				s.TransactionCount++
				s.TotalVolume = s.TotalVolume.Add(tx.Amount)
			}
		}
	}

	out := make([]BankSummary, 0, len(byBank))
	for _, s := range byBank {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BankName < out[j].BankName })
	return out
}

// NetFlow is inbound minus outbound cumulative edge amounts for the account.
// Unknown accounts net to zero.
func (e *Engine) NetFlow(accountID string) decimal.Decimal {
	net := decimal.Zero
	for _, edge := range e.ledger.Edges() {
		if edge.Destination == accountID {
			net = net.Add(edge.TotalAmount)
		}
		if edge.Source == accountID {
			net = net.Sub(edge.TotalAmount)
		}
	}
	return net
}
