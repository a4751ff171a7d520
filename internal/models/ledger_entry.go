package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry kinds
const (
	EntryKindSkipCredit      = "skip_credit"
	EntryKindVendorPayment   = "vendor_payment"
	EntryKindAdminAdjustment = "admin_adjustment"
	EntryKindWithdrawal      = "withdrawal"
)

// ErrInvalidEntry is returned when a ledger entry fails schema validation.
var ErrInvalidEntry = errors.New("invalid ledger entry")

// LedgerEntry is one immutable record in the append-only transaction log.
// The autoincrement ID doubles as the ordering position and the pagination
// cursor. Entries are never updated or deleted; corrections are new
// offsetting entries of kind admin_adjustment.
type LedgerEntry struct {
	ID            uint64          `gorm:"primarykey" json:"id"`
	TransactionID string          `gorm:"not null;index" json:"transaction_id"`
	SenderID      string          `gorm:"not null;index:idx_ledger_participants,priority:1" json:"sender_id"`
	ReceiverID    string          `gorm:"not null;index:idx_ledger_participants,priority:2" json:"receiver_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Kind          string          `gorm:"not null;index" json:"kind"`
	Description   string          `json:"description"`
	// Reference carries a caller-assigned idempotency key. The unique
	// index makes a duplicate commit fail instead of double-applying.
	Reference *string   `gorm:"uniqueIndex" json:"reference,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_ledger_participants,priority:3" json:"created_at"`
}

// ValidEntryKind reports whether kind is a known ledger entry kind.
func ValidEntryKind(kind string) bool {
	switch kind {
	case EntryKindSkipCredit, EntryKindVendorPayment, EntryKindAdminAdjustment, EntryKindWithdrawal:
		return true
	}
	return false
}

// Validate checks the entry schema before it is appended. Unknown kinds
// and non-positive amounts are rejected; the log never stores them.
func (e *LedgerEntry) Validate() error {
	if !ValidEntryKind(e.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, e.Kind)
	}
	if e.SenderID == "" || e.ReceiverID == "" {
		return fmt.Errorf("%w: sender and receiver are required", ErrInvalidEntry)
	}
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}
	return nil
}

// SignedAmount returns the entry's effect on accountID: negative for the
// sender side, positive for the receiver side, zero for bystanders.
func (e *LedgerEntry) SignedAmount(accountID string) decimal.Decimal {
	total := decimal.Zero
	if e.SenderID == accountID {
		total = total.Sub(e.Amount)
	}
	if e.ReceiverID == accountID {
		total = total.Add(e.Amount)
	}
	return total
}

// SkipCreditReference builds the idempotency key enforcing one skip
// credit per (user, meal) pair.
func SkipCreditReference(userID, mealID string) string {
	return fmt.Sprintf("skip_credit:%s:%s", userID, mealID)
}
