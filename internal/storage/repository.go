// Package storage persists accounts and transactions in SQLite so the
// in-memory ledger can be rebuilt on restart. Decimal amounts are stored as
// TEXT to keep them exact; timestamps as RFC 3339 with nanoseconds.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"bankgraph/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveAccount upserts by account id, mirroring the ledger's register
// semantics.
func (r *SQLiteRepository) SaveAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (account_id, account_number, owner_name, bank_name, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			account_number = excluded.account_number,
			owner_name     = excluded.owner_name,
			bank_name      = excluded.bank_name,
			balance        = excluded.balance,
			created_at     = excluded.created_at`,
		a.AccountID, a.AccountNumber, a.OwnerName, a.BankName,
		a.Balance.String(), a.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save account %s: %w", a.AccountID, err)
	}
	return nil
}

// SaveTransaction appends one transaction. seq is the ledger's insertion
// position so reloads replay in the original order.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction, seq int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(transaction_id, source_id, destination_id, amount, timestamp, description, category, status, recorded_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.TransactionID, tx.SourceID, tx.DestinationID,
		tx.Amount.String(), tx.Timestamp.Format(time.RFC3339Nano),
		tx.Description, tx.Category, string(tx.Status), seq)
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", tx.TransactionID, err)
	}
	return nil
}

func (r *SQLiteRepository) LoadAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, account_number, owner_name, bank_name, balance, created_at
		FROM accounts ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a                  core.Account
			balance, createdAt string
		)
		if err := rows.Scan(&a.AccountID, &a.AccountNumber, &a.OwnerName, &a.BankName, &balance, &createdAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("account %s balance %q: %w", a.AccountID, balance, err)
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("account %s created_at %q: %w", a.AccountID, createdAt, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, source_id, destination_id, amount, timestamp, description, category, status
		FROM transactions ORDER BY recorded_seq`)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx                 core.Transaction
			amount, ts, status string
		)
		if err := rows.Scan(&tx.TransactionID, &tx.SourceID, &tx.DestinationID,
			&amount, &ts, &tx.Description, &tx.Category, &status); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s amount %q: %w", tx.TransactionID, amount, err)
		}
		if tx.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("transaction %s timestamp %q: %w", tx.TransactionID, ts, err)
		}
		tx.Status = core.TransactionStatus(status)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// TransactionCount reports the stored transaction total, used by the worker
// to decide the next sequence number after a restart.
func (r *SQLiteRepository) TransactionCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
