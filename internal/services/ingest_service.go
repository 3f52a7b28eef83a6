// Package services wires the ledger to its collaborators. Construction is
// explicit: each process builds one service and hands references down; there
// is no ambient singleton to look up.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bankgraph/internal/amqp"
	"bankgraph/internal/core"
	"bankgraph/internal/ledger"
	"bankgraph/internal/storage"
)

// IngestService feeds the ledger and keeps the durable store and the event
// feed in step. The ledger is authoritative: a ledger failure fails the
// call, while storage and publish failures are logged and absorbed so
// ingestion keeps flowing.
type IngestService struct {
	ledger    *ledger.Ledger
	storage   *storage.SQLiteRepository
	publisher *amqp.Client
}

func NewIngestService(l *ledger.Ledger, repo *storage.SQLiteRepository, publisher *amqp.Client) *IngestService {
	return &IngestService{
		ledger:    l,
		storage:   repo,
		publisher: publisher,
	}
}

func (s *IngestService) Ledger() *ledger.Ledger {
	return s.ledger
}

// RegisterAccount upserts the account in the ledger and mirrors it to the
// durable store.
func (s *IngestService) RegisterAccount(ctx context.Context, account core.Account) error {
	if err := s.ledger.RegisterAccount(account); err != nil {
		return err
	}

	if s.storage != nil {
		if err := s.storage.SaveAccount(ctx, account); err != nil {
			slog.ErrorContext(ctx, "Failed to persist account",
				"account_id", account.AccountID, "error", err)
			// Ledger registration succeeded; the store catches up on replay.
		}
	}

	slog.InfoContext(ctx, "Account registered",
		"account_id", account.AccountID,
		"bank", account.BankName)
	return nil
}

// RecordTransaction records tx in the ledger, assigns a transaction id when
// the caller left it empty, then mirrors to the store and publishes the
// recorded event. Status is always completed at creation.
func (s *IngestService) RecordTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.TransactionID == "" {
		tx.TransactionID = uuid.NewString()
	}
	tx.Status = core.StatusCompleted

	seq, err := s.ledger.RecordTransaction(tx)
	if err != nil {
		return core.Transaction{}, err
	}

	if s.storage != nil {
		if err := s.storage.SaveTransaction(ctx, tx, seq); err != nil {
			slog.ErrorContext(ctx, "Failed to persist transaction",
				"transaction_id", tx.TransactionID, "error", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransaction(ctx, amqp.NewTransactionMessage(tx)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"transaction_id", tx.TransactionID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"transaction_id", tx.TransactionID,
		"source", tx.SourceID,
		"destination", tx.DestinationID,
		"amount", tx.Amount.String())
	return tx, nil
}

// Replay rebuilds the ledger from the durable store, accounts first so
// registered metadata survives before transactions re-create edges.
func (s *IngestService) Replay(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	accounts, err := s.storage.LoadAccounts(ctx)
	if err != nil {
		return fmt.Errorf("replay accounts: %w", err)
	}
	for _, a := range accounts {
		if err := s.ledger.RegisterAccount(a); err != nil {
			return fmt.Errorf("replay account %s: %w", a.AccountID, err)
		}
	}

	txs, err := s.storage.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("replay transactions: %w", err)
	}
	for _, tx := range txs {
		if _, err := s.ledger.RecordTransaction(tx); err != nil {
			return fmt.Errorf("replay transaction %s: %w", tx.TransactionID, err)
		}
	}

	slog.InfoContext(ctx, "Ledger replayed from storage",
		"accounts", len(accounts),
		"transactions", len(txs))
	return nil
}

// Close releases the service's collaborators.
func (s *IngestService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ingest service: %v", errs)
	}
	return nil
}
