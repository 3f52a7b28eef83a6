package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"bankgraph/internal/core"
	"bankgraph/internal/query"
	"bankgraph/internal/storage"
)

type accountRequest struct {
	AccountID     string `json:"account_id"`
	AccountNumber string `json:"account_number"`
	OwnerName     string `json:"owner_name"`
	BankName      string `json:"bank_name"`
	Balance       string `json:"balance"`
	CreatedAt     string `json:"created_at"`
}

type transactionRequest struct {
	TransactionID string `json:"transaction_id"`
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	Amount        string `json:"amount"`
	Timestamp     string `json:"timestamp"`
	Description   string `json:"description"`
	Category      string `json:"category"`
}

func (s *Server) handleRegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	account := core.Account{
		AccountID:     req.AccountID,
		AccountNumber: req.AccountNumber,
		OwnerName:     req.OwnerName,
		BankName:      req.BankName,
		Balance:       decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}
	if req.Balance != "" {
		balance, err := decimal.NewFromString(req.Balance)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("parse balance: %w", err))
			return
		}
		account.Balance = balance
	}
	if req.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339Nano, req.CreatedAt)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("parse created_at: %w", err))
			return
		}
		account.CreatedAt = created
	}

	if err := s.ingest.RegisterAccount(r.Context(), account); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("parse amount: %w", err))
		return
	}
	ts := time.Now().UTC()
	if req.Timestamp != "" {
		if ts, err = time.Parse(time.RFC3339Nano, req.Timestamp); err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("parse timestamp: %w", err))
			return
		}
	}

	tx, err := s.ingest.RecordTransaction(r.Context(), core.Transaction{
		TransactionID: req.TransactionID,
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		Amount:        amount,
		Timestamp:     ts,
		Description:   req.Description,
		Category:      req.Category,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleQueryTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := query.Filter{
		SourceID:      q.Get("source"),
		DestinationID: q.Get("destination"),
		Category:      q.Get("category"),
	}

	var err error
	if f.Start, err = parseTimeParam(q.Get("start")); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if f.End, err = parseTimeParam(q.Get("end")); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if f.MinAmount, err = parseDecimalParam(q.Get("min")); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if f.MaxAmount, err = parseDecimalParam(q.Get("max")); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	txs, err := s.query.Transactions(f)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, orEmptyTxs(txs))
}

func (s *Server) handleSearchAccounts(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("search")
	if text == "" {
		writeJSON(w, http.StatusOK, s.ingest.Ledger().Accounts())
		return
	}
	accounts := s.query.SearchAccounts(text)
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.ingest.Ledger().Account(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%s: %w", id, core.ErrAccountNotFound))
		return
	}
	writeJSON(w, http.StatusOK, orEmptyTxs(s.ingest.Ledger().TransactionsForAccount(id)))
}

func (s *Server) handleNetFlow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.ingest.Ledger().Account(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%s: %w", id, core.ErrAccountNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": id,
		"net_flow":   s.stats.NetFlow(id),
	})
}

func (s *Server) handleGeneralStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.General())
}

func (s *Server) handlePeriodStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseTimeParam(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	end, err := parseTimeParam(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if start == nil || end == nil {
		writeError(w, http.StatusBadRequest, errors.New("start and end are required"))
		return
	}

	summary, err := s.stats.ForPeriod(*start, *end)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.CategoryDistribution())
}

func (s *Server) handleBankStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.ByBank())
}

func (s *Server) handleTopAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n := 10
	if v := q.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("invalid n %q", v))
			return
		}
		n = parsed
	}

	switch by := q.Get("by"); by {
	case "", "activity":
		writeJSON(w, http.StatusOK, s.stats.TopByActivity(n))
	case "volume":
		writeJSON(w, http.StatusOK, s.stats.TopByVolume(n))
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown ranking %q", by))
	}
}

func (s *Server) handleConnected(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, errors.New("a and b are required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"a":         a,
		"b":         b,
		"connected": s.analytics.Connected(a, b),
	})
}

func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, errors.New("from and to are required"))
		return
	}

	path, total := s.analytics.ShortestPath(from, to)
	if path == nil {
		path = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":         path,
		"total_weight": total,
	})
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	components := s.analytics.Components()
	if components == nil {
		components = [][]string{}
	}
	writeJSON(w, http.StatusOK, components)
}

func (s *Server) handleMostConnected(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("invalid n %q", v))
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.analytics.MostConnected(n))
}

func (s *Server) handleExportAccounts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="accounts.csv"`)
	if err := storage.ExportAccountsCSV(w, s.ingest.Ledger().Accounts()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to export accounts", "error", err)
	}
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := storage.ExportTransactionsCSV(w, s.ingest.Ledger().Transactions()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to export transactions", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, fmt.Errorf("parse time %q: %w", v, err)
	}
	return &t, nil
}

func parseDecimalParam(v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", v, err)
	}
	return &d, nil
}

func orEmptyTxs(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}
