// Package events defines the outbound event contract for committed
// transfers. Publication is best-effort and happens after commit; the
// ledger, not the event stream, is the source of truth.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopicTransferCompleted is the topic transfer events are published to.
const TopicTransferCompleted = "transfer_completed"

// Publisher publishes domain events to an external broker.
type Publisher interface {
	Publish(topic string, event any) error
}

// TransferCompleted is emitted once per committed ledger entry.
type TransferCompleted struct {
	EntryID       uint64          `json:"entry_id"`
	TransactionID string          `json:"transaction_id"`
	SenderID      string          `json:"sender_id"`
	ReceiverID    string          `json:"receiver_id"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, any) error { return nil }
