package ledger

import (
	"github.com/shopspring/decimal"
)

// TransferRequest describes one balance movement between two accounts.
type TransferRequest struct {
	SenderID    string
	ReceiverID  string
	Amount      decimal.Decimal
	Kind        string
	Description string
	// Reference is an optional caller-assigned idempotency key. A
	// commit with an already-used reference fails with
	// ErrDuplicateReference instead of applying twice.
	Reference *string
}

// ReconcileReport compares the balance derived from the ledger log with
// the live account store value.
type ReconcileReport struct {
	AccountID      string          `json:"account_id"`
	LiveBalance    decimal.Decimal `json:"live_balance"`
	DerivedBalance decimal.Decimal `json:"derived_balance"`
	Drift          decimal.Decimal `json:"drift"`
	Consistent     bool            `json:"consistent"`
}
