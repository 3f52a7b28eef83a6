// Package worker turns AMQP transaction messages into ledger records.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bankgraph/internal/amqp"
	"bankgraph/internal/core"
	"bankgraph/internal/services"
)

// IngestWorker consumes the ingestion queue and records each transaction
// through the service, so the ledger, the store and downstream events stay
// in step with the feed.
type IngestWorker struct {
	ingest *services.IngestService
}

func NewIngestWorker(ingest *services.IngestService) *IngestWorker {
	return &IngestWorker{ingest: ingest}
}

// HandleTransactionMessage processes one feed message. Duplicate deliveries
// are acknowledged rather than requeued: the ledger already holds the
// transaction, so redelivery can never succeed.
func (w *IngestWorker) HandleTransactionMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	tx, err := msg.Transaction()
	if err != nil {
		return fmt.Errorf("decode transaction message: %w", err)
	}

	if _, err := w.ingest.RecordTransaction(ctx, tx); err != nil {
		if errors.Is(err, core.ErrDuplicateTransaction) {
			slog.WarnContext(ctx, "Skipping already-recorded transaction",
				"transaction_id", tx.TransactionID)
			return nil
		}
		return fmt.Errorf("record transaction %s: %w", tx.TransactionID, err)
	}
	return nil
}
