package memory

import (
	"context"
	"errors"
	"testing"

	"messpay/internal/models"
	"messpay/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_TransactionRollback(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.CreateAccount(ctx, &models.Account{
		ID:      "a",
		Kind:    models.AccountKindStudent,
		Balance: decimal.NewFromInt(100),
		Status:  models.AccountStatusActive,
	}))

	boom := errors.New("boom")
	err := store.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		account, err := tx.GetAccountForUpdate(ctx, "a")
		require.NoError(t, err)
		account.Balance = decimal.Zero
		require.NoError(t, tx.SaveAccount(ctx, account))

		ref := "r1"
		require.NoError(t, tx.AppendEntry(ctx, &models.LedgerEntry{
			SenderID:   "a",
			ReceiverID: "b",
			Amount:     decimal.NewFromInt(100),
			Kind:       models.EntryKindVendorPayment,
			Reference:  &ref,
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Everything from the failed transaction must be gone, including
	// the reference reservation.
	account, err := store.GetAccount(ctx, "a")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))

	entries, err := store.ListEntriesForAccount(ctx, "a", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	exists, err := store.ReferenceExists(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_DuplicateReference(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	ref := "once"

	entry := models.LedgerEntry{
		SenderID:   "a",
		ReceiverID: "b",
		Amount:     decimal.NewFromInt(1),
		Kind:       models.EntryKindAdminAdjustment,
		Reference:  &ref,
	}
	first := entry
	require.NoError(t, store.AppendEntry(ctx, &first))

	second := entry
	err := store.AppendEntry(ctx, &second)
	assert.ErrorIs(t, err, repositories.ErrDuplicateReference)
}

func TestStore_EntryOrderingAndCursor(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 4; i++ {
		e := models.LedgerEntry{
			SenderID:   "a",
			ReceiverID: "b",
			Amount:     decimal.NewFromInt(1),
			Kind:       models.EntryKindAdminAdjustment,
		}
		require.NoError(t, store.AppendEntry(ctx, &e))
		ids = append(ids, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
	// IDs are assigned in strictly increasing order.
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	page, err := store.ListEntriesForAccount(ctx, "a", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)

	page, err = store.ListEntriesForAccount(ctx, "a", 10, page[1].ID)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].ID)

	sum, err := store.SumEntriesForAccount(ctx, "b")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(4)))
}

func TestStore_MealCatalog(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.GetMeal(ctx, "m1")
	assert.ErrorIs(t, err, repositories.ErrMealNotFound)

	meal := models.Meal{
		ID:       "m1",
		Date:     "2026-09-01",
		Type:     "dinner",
		Price:    decimal.NewFromInt(50),
		IsActive: true,
	}
	require.NoError(t, store.PutMeal(ctx, meal))

	got, err := store.GetMeal(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, meal.ID, got.ID)
	assert.True(t, got.Price.Equal(meal.Price))
}

func TestStore_ContextCancelled(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetAccount(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)

	err = store.ExecuteInTransaction(ctx, func(repositories.LedgerRepository) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
