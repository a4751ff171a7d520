package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account kinds
const (
	AccountKindStudent = "student"
	AccountKindVendor  = "vendor"
	AccountKindSystem  = "system"
)

// Account statuses
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)

// SystemAccountID is the sentinel account that mints skip credits and
// absorbs withdrawals. Seeded once at startup.
const SystemAccountID = "SYSTEM"

// Account holds the live balance for a student, vendor, or the system.
// The balance is mutated only inside the ledger service's commit path and
// must always equal the signed sum of the account's ledger entries.
type Account struct {
	ID        string          `gorm:"primarykey" json:"id"`
	Kind      string          `gorm:"not null;index" json:"kind"`
	Balance   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	Status    string          `gorm:"not null;default:'active'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsSystem reports whether the account is the sentinel mint/sink account.
func (a *Account) IsSystem() bool {
	return a.Kind == AccountKindSystem
}

// ValidAccountKind reports whether kind is a known account kind.
func ValidAccountKind(kind string) bool {
	switch kind {
	case AccountKindStudent, AccountKindVendor, AccountKindSystem:
		return true
	}
	return false
}
