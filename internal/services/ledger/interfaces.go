package ledger

import (
	"context"

	"messpay/internal/models"

	"github.com/shopspring/decimal"
)

// Service is the transfer engine plus the reconciliation/query surface.
// All balance mutations anywhere in the system go through Transfer.
type Service interface {
	// Transfer atomically moves amount from sender to receiver and
	// appends exactly one ledger entry. All-or-nothing.
	Transfer(ctx context.Context, req TransferRequest) (*models.LedgerEntry, error)

	// CreateAccount registers a new account with a zero balance. An
	// empty id gets a generated one.
	CreateAccount(ctx context.Context, id, kind string) (*models.Account, error)
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// Reconcile derives the account balance from the ledger log and
	// reports any drift from the live value. Read-only.
	Reconcile(ctx context.Context, accountID string) (*ReconcileReport, error)
	// History lists ledger entries involving the account, newest first,
	// using beforeID as a keyset cursor (zero for the first page).
	History(ctx context.Context, accountID string, limit int, beforeID uint64) ([]models.LedgerEntry, error)
}

// BalanceCache is the read-path cache the service invalidates after
// every commit. Implementations must treat misses as errors.
type BalanceCache interface {
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, accountID string, balance decimal.Decimal) error
	InvalidateAccount(ctx context.Context, accountID string) error
}
