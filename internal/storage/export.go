package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"bankgraph/internal/core"
)

// ExportAccountsCSV writes accounts as CSV for external tooling.
func ExportAccountsCSV(w io.Writer, accounts []core.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"AccountID", "AccountNumber", "OwnerName", "BankName", "Balance", "CreatedAt"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range accounts {
		record := []string{
			a.AccountID,
			a.AccountNumber,
			a.OwnerName,
			a.BankName,
			a.Balance.String(),
			a.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write account %s: %w", a.AccountID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTransactionsCSV writes transactions as CSV in the given order.
func ExportTransactionsCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	header := []string{"TransactionID", "SourceID", "DestinationID", "Amount", "Timestamp", "Description", "Category", "Status"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		record := []string{
			tx.TransactionID,
			tx.SourceID,
			tx.DestinationID,
			tx.Amount.String(),
			tx.Timestamp.Format(time.RFC3339Nano),
			tx.Description,
			tx.Category,
			string(tx.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write transaction %s: %w", tx.TransactionID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
