// Package skipcredit converts meal-skip events into system-to-student
// credits under policy rules: skips only count before the meal's cutoff,
// and each (user, meal) pair is credited at most once, no matter how
// many times the selection is toggled.
package skipcredit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"messpay/internal/models"
	"messpay/internal/repositories"
	"messpay/internal/services/ledger"
)

var (
	ErrAlreadyCredited = errors.New("meal already credited")
	ErrCutoffPassed    = errors.New("meal cutoff has passed")
	ErrMealInactive    = errors.New("meal is not active")
)

// Service issues skip credits.
type Service interface {
	// SkipCredit credits meal.Price from the system account to the
	// student, exactly once per (user, meal) pair.
	SkipCredit(ctx context.Context, userID string, meal models.Meal) (*models.LedgerEntry, error)
	// ProcessSelection applies a selection change. Only a transition to
	// skipped issues a credit; toggling back to attending never
	// reverses one.
	ProcessSelection(ctx context.Context, sel models.MealSelection, meal models.Meal) (*models.LedgerEntry, error)
}

type service struct {
	ledger ledger.Service
	repo   repositories.LedgerRepository
	now    func() time.Time
}

// NewService creates the skip-credit engine. The repository is used for
// the idempotence pre-check against the ledger's reference index.
func NewService(ledgerSvc ledger.Service, repo repositories.LedgerRepository) Service {
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if repo == nil {
		panic("repo is required")
	}
	return &service{
		ledger: ledgerSvc,
		repo:   repo,
		now:    time.Now,
	}
}

func (s *service) SkipCredit(ctx context.Context, userID string, meal models.Meal) (*models.LedgerEntry, error) {
	if !meal.IsActive {
		return nil, ErrMealInactive
	}
	if s.now().After(meal.Cutoff) {
		return nil, ErrCutoffPassed
	}

	ref := models.SkipCreditReference(userID, meal.ID)
	exists, err := s.repo.ReferenceExists(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing skip credit: %w", err)
	}
	if exists {
		return nil, ErrAlreadyCredited
	}

	entry, err := s.ledger.Transfer(ctx, ledger.TransferRequest{
		SenderID:    models.SystemAccountID,
		ReceiverID:  userID,
		Amount:      meal.Price,
		Kind:        models.EntryKindSkipCredit,
		Description: fmt.Sprintf("Skip credit for %s %s on %s", meal.Type, meal.ID, meal.Date),
		Reference:   &ref,
	})
	if err != nil {
		// A concurrent skip can win the race between the pre-check and
		// the commit; the reference's uniqueness turns that into a
		// duplicate instead of a second credit.
		if errors.Is(err, ledger.ErrDuplicateReference) {
			return nil, ErrAlreadyCredited
		}
		return nil, err
	}
	return entry, nil
}

func (s *service) ProcessSelection(ctx context.Context, sel models.MealSelection, meal models.Meal) (*models.LedgerEntry, error) {
	if sel.Status != models.SelectionSkipped {
		// Attending (or toggling back) is a no-op: issued credits stay,
		// reversals are explicit admin adjustments.
		return nil, nil
	}
	return s.SkipCredit(ctx, sel.UserID, meal)
}
