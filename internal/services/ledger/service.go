package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"messpay/internal/events"
	"messpay/internal/models"
	"messpay/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	repo      repositories.LedgerRepository
	cache     BalanceCache
	publisher events.Publisher
	metrics   MetricsCollector
}

// NewService creates the ledger service. The repository is required;
// cache, publisher, and metrics fall back to no-op implementations.
func NewService(
	repo repositories.LedgerRepository,
	cache BalanceCache,
	publisher events.Publisher,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		cache = noopCache{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
	}
}

func (s *service) CreateAccount(ctx context.Context, id, kind string) (*models.Account, error) {
	if !models.ValidAccountKind(kind) {
		return nil, fmt.Errorf("invalid account kind %q", kind)
	}
	if id == "" {
		id = uuid.New().String()
	}
	account := &models.Account{
		ID:      id,
		Kind:    kind,
		Balance: decimal.Zero,
		Status:  models.AccountStatusActive,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *service) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *service) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if balance, err := s.cache.GetBalance(ctx, accountID); err == nil {
		return balance, nil
	}

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.cache.SetBalance(ctx, accountID, account.Balance); err != nil {
		log.Printf("failed to cache balance for %s: %v", accountID, err)
	}
	return account.Balance, nil
}

// Transfer validates the request, then commits the debit, credit, and
// ledger append as one atomic unit. The funds check is repeated against
// a freshly read balance under the account locks, so a concurrent
// transfer can never turn the advisory check into a double-spend.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (*models.LedgerEntry, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("transfer", time.Since(start))
	}()

	if err := s.validateTransfer(ctx, req); err != nil {
		s.metrics.RecordError("transfer", errType(err))
		return nil, err
	}

	entry, err := s.commitWithRetry(ctx, req)
	if err != nil {
		s.metrics.RecordError("transfer", errType(err))
		return nil, err
	}

	s.invalidateBalances(ctx, req.SenderID, req.ReceiverID)
	s.publishTransfer(entry)
	s.metrics.RecordTransfer(req.Kind, req.Amount)

	return entry, nil
}

// validateTransfer runs the permanent-error checks, first failure wins.
// The funds check here is advisory; the binding one happens under the
// row locks in commit.
func (s *service) validateTransfer(ctx context.Context, req TransferRequest) error {
	if !models.ValidEntryKind(req.Kind) {
		return fmt.Errorf("%w: unknown kind %q", models.ErrInvalidEntry, req.Kind)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if req.SenderID == req.ReceiverID {
		return ErrSelfTransfer
	}

	sender, err := s.GetAccount(ctx, req.SenderID)
	if err != nil {
		return err
	}
	receiver, err := s.GetAccount(ctx, req.ReceiverID)
	if err != nil {
		return err
	}

	if sender.Status != models.AccountStatusActive {
		return fmt.Errorf("%w: sender %s", ErrAccountInactive, sender.ID)
	}
	if receiver.Status != models.AccountStatusActive {
		return fmt.Errorf("%w: receiver %s", ErrAccountInactive, receiver.ID)
	}

	if err := checkRoles(req.Kind, sender, receiver); err != nil {
		return err
	}

	if !sender.IsSystem() && sender.Balance.LessThan(req.Amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// checkRoles enforces the per-kind participant constraints. Unknown
// kinds are rejected at entry validation, admin_adjustment is
// unconstrained.
func checkRoles(kind string, sender, receiver *models.Account) error {
	switch kind {
	case models.EntryKindWithdrawal:
		if sender.Kind != models.AccountKindVendor {
			return fmt.Errorf("%w: withdrawal requires a vendor sender", ErrRoleViolation)
		}
	case models.EntryKindVendorPayment:
		if receiver.Kind != models.AccountKindVendor {
			return fmt.Errorf("%w: vendor payment requires a vendor receiver", ErrRoleViolation)
		}
	case models.EntryKindSkipCredit:
		if !sender.IsSystem() {
			return fmt.Errorf("%w: skip credit must be issued by the system account", ErrRoleViolation)
		}
	}
	return nil
}

// commitWithRetry retries transient storage conflicts with linear
// backoff, then gives up with ErrTimeout. Permanent errors surface
// immediately.
func (s *service) commitWithRetry(ctx context.Context, req TransferRequest) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	var err error

	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		entry, err = s.commit(ctx, req)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, ErrStorageConflict) || attempt == maxCommitRetries-1 {
			break
		}
		select {
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		case <-ctx.Done():
			return nil, ErrTimeout
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return nil, ErrTimeout
	case errors.Is(err, ErrStorageConflict):
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, repositories.ErrDuplicateReference):
		return nil, ErrDuplicateReference
	case errors.Is(err, ErrInsufficientFunds):
		return nil, ErrInsufficientFunds
	}
	return nil, err
}

// commit is the atomic unit: lock both accounts, re-check funds, apply
// the debit and credit, append the entry. Accounts are locked in
// ascending ID order so two transfers over the same pair cannot
// deadlock.
func (s *service) commit(ctx context.Context, req TransferRequest) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry

	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		firstID, secondID := req.SenderID, req.ReceiverID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}

		first, err := tx.GetAccountForUpdate(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := tx.GetAccountForUpdate(ctx, secondID)
		if err != nil {
			return err
		}

		sender, receiver := first, second
		if sender.ID != req.SenderID {
			sender, receiver = second, first
		}

		// Re-validate against the locked balance: this closes the
		// check-then-act window.
		if !sender.IsSystem() && sender.Balance.LessThan(req.Amount) {
			return ErrInsufficientFunds
		}

		sender.Balance = sender.Balance.Sub(req.Amount)
		receiver.Balance = receiver.Balance.Add(req.Amount)

		if err := tx.SaveAccount(ctx, sender); err != nil {
			return err
		}
		if err := tx.SaveAccount(ctx, receiver); err != nil {
			return err
		}

		e := &models.LedgerEntry{
			TransactionID: uuid.New().String(),
			SenderID:      req.SenderID,
			ReceiverID:    req.ReceiverID,
			Amount:        req.Amount,
			Kind:          req.Kind,
			Description:   req.Description,
			Reference:     req.Reference,
		}
		if err := tx.AppendEntry(ctx, e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSerialization) {
			return nil, fmt.Errorf("%w: %v", ErrStorageConflict, err)
		}
		return nil, err
	}
	return entry, nil
}

func (s *service) Reconcile(ctx context.Context, accountID string) (*ReconcileReport, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	derived, err := s.repo.SumEntriesForAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile account %s: %w", accountID, err)
	}

	drift := account.Balance.Sub(derived)
	return &ReconcileReport{
		AccountID:      accountID,
		LiveBalance:    account.Balance,
		DerivedBalance: derived,
		Drift:          drift,
		Consistent:     drift.IsZero(),
	}, nil
}

func (s *service) History(ctx context.Context, accountID string, limit int, beforeID uint64) ([]models.LedgerEntry, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	entries, err := s.repo.ListEntriesForAccount(ctx, accountID, limit, beforeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for account %s: %w", accountID, err)
	}
	return entries, nil
}

func (s *service) invalidateBalances(ctx context.Context, accountIDs ...string) {
	for _, id := range accountIDs {
		if err := s.cache.InvalidateAccount(ctx, id); err != nil {
			log.Printf("failed to invalidate cached balance for %s: %v", id, err)
		}
	}
}

func (s *service) publishTransfer(entry *models.LedgerEntry) {
	event := events.TransferCompleted{
		EntryID:       entry.ID,
		TransactionID: entry.TransactionID,
		SenderID:      entry.SenderID,
		ReceiverID:    entry.ReceiverID,
		Amount:        entry.Amount,
		Kind:          entry.Kind,
		OccurredAt:    entry.CreatedAt,
	}
	if err := s.publisher.Publish(events.TopicTransferCompleted, event); err != nil {
		log.Printf("failed to publish transfer event for entry %d: %v", entry.ID, err)
	}
}

func errType(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrInvalidEntry):
		return "invalid_entry"
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrRoleViolation):
		return "role_violation"
	case errors.Is(err, ErrDuplicateReference):
		return "duplicate_reference"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "internal"
	}
}

// noopCache satisfies BalanceCache when no cache is configured. Every
// read is a miss, so callers always hit the account store.
type noopCache struct{}

func (noopCache) GetBalance(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("cache disabled")
}
func (noopCache) SetBalance(context.Context, string, decimal.Decimal) error { return nil }

func (noopCache) InvalidateAccount(context.Context, string) error { return nil }
