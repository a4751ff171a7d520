// Package repositories provides the data access layer for accounts and
// the ledger log. It defines the storage interface the ledger service
// depends on, plus the PostgreSQL implementation; an in-memory
// implementation lives in the memory subpackage.
package repositories

import (
	"context"
	"errors"

	"messpay/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrDuplicateReference = errors.New("duplicate ledger reference")
	ErrSerialization      = errors.New("storage serialization conflict")
)

// LedgerRepository is the storage dependency injected into the ledger
// service. Balance writes are only meaningful inside
// ExecuteInTransaction: the callback receives a repository bound to the
// transaction, and everything done through it commits or rolls back as
// one unit.
type LedgerRepository interface {
	// Account store
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	// GetAccountForUpdate reads the account under an exclusive row lock.
	// Only valid inside ExecuteInTransaction.
	GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error

	// Ledger log
	AppendEntry(ctx context.Context, entry *models.LedgerEntry) error
	// ListEntriesForAccount returns entries where the account is sender
	// or receiver, newest first. beforeID is a keyset cursor; zero means
	// start from the newest entry.
	ListEntriesForAccount(ctx context.Context, accountID string, limit int, beforeID uint64) ([]models.LedgerEntry, error)
	// SumEntriesForAccount replays the log for the account and returns
	// the signed total (credits positive, debits negative).
	SumEntriesForAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	// ExecuteInTransaction runs fn inside a single atomic unit.
	ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error
}
