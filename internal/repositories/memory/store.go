// Package memory provides an in-memory LedgerRepository used by tests
// and by the STORE=memory development mode. Transactions are serialized
// under a single store lock and rolled back from a snapshot of the
// touched state, so the commit path keeps the same all-or-nothing
// semantics as the PostgreSQL backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"messpay/internal/models"
	"messpay/internal/repositories"

	"github.com/shopspring/decimal"
)

type Store struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	entries  []models.LedgerEntry
	refs     map[string]struct{}
	meals    map[string]models.Meal
	nextID   uint64

	// inTx marks a transaction-bound view. The store lock is held for
	// the whole transaction, so nested calls must not re-acquire it.
	inTx bool
	root *Store
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		refs:     make(map[string]struct{}),
		meals:    make(map[string]models.Meal),
		nextID:   1,
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) state() *Store {
	if s.root != nil {
		return s.root
	}
	return s
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock()()
	st := s.state()
	if _, exists := st.accounts[account.ID]; exists {
		return repositories.ErrDuplicateAccount
	}
	st.accounts[account.ID] = *account
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.lock()()
	st := s.state()
	account, exists := st.accounts[id]
	if !exists {
		return nil, repositories.ErrAccountNotFound
	}
	return &account, nil
}

// GetAccountForUpdate behaves like GetAccount: the store lock held for
// the duration of the transaction already gives exclusive access.
func (s *Store) GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return s.GetAccount(ctx, id)
}

func (s *Store) SaveAccount(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock()()
	st := s.state()
	if _, exists := st.accounts[account.ID]; !exists {
		return repositories.ErrAccountNotFound
	}
	st.accounts[account.ID] = *account
	return nil
}

func (s *Store) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	defer s.lock()()
	st := s.state()
	if entry.Reference != nil {
		if _, exists := st.refs[*entry.Reference]; exists {
			return repositories.ErrDuplicateReference
		}
		st.refs[*entry.Reference] = struct{}{}
	}
	entry.ID = st.nextID
	st.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	st.entries = append(st.entries, *entry)
	return nil
}

func (s *Store) ListEntriesForAccount(ctx context.Context, accountID string, limit int, beforeID uint64) ([]models.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer s.lock()()
	st := s.state()
	var matched []models.LedgerEntry
	for _, e := range st.entries {
		if e.SenderID != accountID && e.ReceiverID != accountID {
			continue
		}
		if beforeID > 0 && e.ID >= beforeID {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) SumEntriesForAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	defer s.lock()()
	st := s.state()
	total := decimal.Zero
	for _, e := range st.entries {
		total = total.Add(e.SignedAmount(accountID))
	}
	return total, nil
}

func (s *Store) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	defer s.lock()()
	st := s.state()
	_, exists := st.refs[reference]
	return exists, nil
}

// PutMeal stores meal metadata, standing in for the catalog
// collaborator's table in memory mode.
func (s *Store) PutMeal(ctx context.Context, meal models.Meal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock()()
	s.state().meals[meal.ID] = meal
	return nil
}

func (s *Store) GetMeal(ctx context.Context, id string) (models.Meal, error) {
	if err := ctx.Err(); err != nil {
		return models.Meal{}, err
	}
	defer s.lock()()
	meal, exists := s.state().meals[id]
	if !exists {
		return models.Meal{}, repositories.ErrMealNotFound
	}
	return meal, nil
}

func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(repositories.LedgerRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	tx := &Store{inTx: true, root: s}
	if err := fn(tx); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	accounts map[string]models.Account
	entries  []models.LedgerEntry
	refs     map[string]struct{}
	nextID   uint64
}

func (s *Store) snapshot() storeSnapshot {
	accounts := make(map[string]models.Account, len(s.accounts))
	for id, a := range s.accounts {
		accounts[id] = a
	}
	refs := make(map[string]struct{}, len(s.refs))
	for r := range s.refs {
		refs[r] = struct{}{}
	}
	entries := make([]models.LedgerEntry, len(s.entries))
	copy(entries, s.entries)
	return storeSnapshot{accounts: accounts, entries: entries, refs: refs, nextID: s.nextID}
}

func (s *Store) restore(snap storeSnapshot) {
	s.accounts = snap.accounts
	s.entries = snap.entries
	s.refs = snap.refs
	s.nextID = snap.nextID
}
