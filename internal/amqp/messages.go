package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bankgraph/internal/core"
)

// TransactionMessage carries one transaction over the ingestion feed. The
// amount travels as a string so the decimal value survives JSON exactly.
type TransactionMessage struct {
	TransactionID string    `json:"transaction_id"`
	SourceID      string    `json:"source_id"`
	DestinationID string    `json:"destination_id"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
}

func NewTransactionMessage(tx core.Transaction) *TransactionMessage {
	return &TransactionMessage{
		TransactionID: tx.TransactionID,
		SourceID:      tx.SourceID,
		DestinationID: tx.DestinationID,
		Amount:        tx.Amount.String(),
		Timestamp:     tx.Timestamp,
		Description:   tx.Description,
		Category:      tx.Category,
	}
}

// Transaction converts the message back into a domain transaction. Status is
// always completed at creation; lifecycle transitions live outside this core.
func (m *TransactionMessage) Transaction() (core.Transaction, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", m.Amount, err)
	}
	return core.Transaction{
		TransactionID: m.TransactionID,
		SourceID:      m.SourceID,
		DestinationID: m.DestinationID,
		Amount:        amount,
		Timestamp:     m.Timestamp,
		Description:   m.Description,
		Category:      m.Category,
		Status:        core.StatusCompleted,
	}, nil
}

func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
