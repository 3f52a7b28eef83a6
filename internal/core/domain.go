package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

type (
	TransactionStatus string

	// Account identifies a bank account in the network. Identity is the
	// AccountID alone; Balance is set directly and never derived from
	// transaction flow.
	Account struct {
		AccountID     string          `json:"account_id"`
		AccountNumber string          `json:"account_number"`
		OwnerName     string          `json:"owner_name"`
		BankName      string          `json:"bank_name"`
		Balance       decimal.Decimal `json:"balance"`
		CreatedAt     time.Time       `json:"created_at"`
	}

	// Transaction is a directed transfer between two accounts. Immutable
	// once recorded; Status is fixed at creation.
	Transaction struct {
		TransactionID string            `json:"transaction_id"`
		SourceID      string            `json:"source_id"`
		DestinationID string            `json:"destination_id"`
		Amount        decimal.Decimal   `json:"amount"`
		Timestamp     time.Time         `json:"timestamp"`
		Description   string            `json:"description"`
		Category      string            `json:"category"`
		Status        TransactionStatus `json:"status"`
	}
)

var (
	ErrEmptyAccountID       = errors.New("empty account id")
	ErrEmptyTransactionID   = errors.New("empty transaction id")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrSelfTransfer         = errors.New("source and destination are the same account")
	ErrDuplicateTransaction = errors.New("transaction id already recorded")
	ErrInvalidPeriod        = errors.New("period start is after end")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInconsistentLedger   = errors.New("ledger invariant violated")
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.AccountID) == "" {
		return ErrEmptyAccountID
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.TransactionID) == "" {
		return ErrEmptyTransactionID
	}
	if strings.TrimSpace(t.SourceID) == "" || strings.TrimSpace(t.DestinationID) == "" {
		return ErrEmptyAccountID
	}
	if t.SourceID == t.DestinationID {
		return ErrSelfTransfer
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePeriod checks an inclusive [start, end] window.
func ValidatePeriod(start, end time.Time) error {
	if start.After(end) {
		return ErrInvalidPeriod
	}
	return nil
}

// InPeriod reports whether the transaction timestamp falls in the
// inclusive [start, end] window.
func (t Transaction) InPeriod(start, end time.Time) bool {
	return !t.Timestamp.Before(start) && !t.Timestamp.After(end)
}
