package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"messpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates the PostgreSQL-backed repository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, translateConflict(err)
	}
	return &account, nil
}

func (r *ledgerRepository) SaveAccount(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return translateConflict(err)
	}
	return nil
}

func (r *ledgerRepository) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return translateConflict(err)
	}
	return nil
}

func (r *ledgerRepository) ListEntriesForAccount(ctx context.Context, accountID string, limit int, beforeID uint64) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var entries []models.LedgerEntry
	if err := q.Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepository) SumEntriesForAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
		Select(`COALESCE(SUM(
			CASE WHEN receiver_id = ? THEN amount ELSE 0 END -
			CASE WHEN sender_id = ? THEN amount ELSE 0 END
		), 0)`, accountID, accountID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	return total, nil
}

func (r *ledgerRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("reference = ?", reference).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up reference: %w", err)
	}
	return count > 0, nil
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
	if err != nil {
		return translateConflict(err)
	}
	return nil
}

// translateConflict maps PostgreSQL serialization failures and deadlocks
// to ErrSerialization so the service layer can retry them.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLSTATE 40001") || strings.Contains(msg, "SQLSTATE 40P01") {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return err
}
