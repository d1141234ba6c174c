// Package memory keeps the ledger in process memory. Used by tests and for
// running the bot without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
)

// Store holds accounts in a map guarded by a single RWMutex. Writers keep the
// lock for the whole read-modify-write, which serializes claims per account.
type Store struct {
	mu       sync.RWMutex
	accounts map[int64]*models.Account
	// creation order, used for referral listings
	order   []int64
	entries []models.LedgerEntry
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*models.Account),
	}
}

func (s *Store) Get(ctx context.Context, id int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return clone(account), nil
}

func (s *Store) Create(ctx context.Context, account *models.Account, referralBonus int64) (ledger.CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.accounts[account.ID]; ok {
		return ledger.CreateResult{Account: clone(existing)}, nil
	}

	now := time.Now()
	created := clone(account)
	created.CreatedAt = now
	created.UpdatedAt = now

	var referrer *models.Account
	if created.ReferrerID != nil {
		ref, ok := s.accounts[*created.ReferrerID]
		if !ok || ref.ID == created.ID {
			created.ReferrerID = nil
		} else {
			ref.Balance += referralBonus
			ref.UpdatedAt = now

			entry := models.NewLedgerEntry(ref.ID, models.EntryReferral, referralBonus)
			source := created.ID
			entry.SourceID = &source
			entry.CreatedAt = now
			s.entries = append(s.entries, *entry)

			referrer = clone(ref)
		}
	}

	s.accounts[created.ID] = created
	s.order = append(s.order, created.ID)

	return ledger.CreateResult{Account: clone(created), Created: true, Referrer: referrer}, nil
}

func (s *Store) Update(ctx context.Context, id int64, fn ledger.MutateFunc) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	draft := clone(current)
	entry, err := fn(draft)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return clone(current), nil
	}

	now := time.Now()
	draft.UpdatedAt = now
	entry.CreatedAt = now
	s.accounts[id] = draft
	s.entries = append(s.entries, *entry)

	return clone(draft), nil
}

func (s *Store) SetDisplayName(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ledger.ErrNotFound
	}
	account.DisplayName = name
	account.UpdatedAt = time.Now()
	return nil
}

func (s *Store) Top(ctx context.Context, limit int) ([]models.Account, error) {
	s.mu.RLock()
	all := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, *clone(a))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Balance != all[j].Balance {
			return all[i].Balance > all[j].Balance
		}
		return all[i].ID < all[j].ID
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.Stats{UserCount: int64(len(s.accounts))}
	for _, a := range s.accounts {
		stats.TotalBalance += a.Balance
	}
	return stats, nil
}

func (s *Store) Referrals(ctx context.Context, referrerID int64) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	referrals := []models.Account{}
	for _, id := range s.order {
		a := s.accounts[id]
		if a.ReferrerID != nil && *a.ReferrerID == referrerID {
			referrals = append(referrals, *clone(a))
		}
	}
	return referrals, nil
}

func (s *Store) ReferralEarnings(ctx context.Context, referrerID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, e := range s.entries {
		if e.AccountID == referrerID && e.Kind == models.EntryReferral {
			total += e.Amount
		}
	}
	return total, nil
}

func (s *Store) BonusReady(ctx context.Context, cutoff int64) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ready := []models.Account{}
	for _, a := range s.accounts {
		if a.LastBonusAt > 0 && a.LastBonusAt <= cutoff {
			ready = append(ready, *clone(a))
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].ID < ready[j].ID })
	return ready, nil
}

// Entries returns a copy of the ledger entries in write order.
func (s *Store) Entries() []models.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func clone(a *models.Account) *models.Account {
	c := *a
	if a.ReferrerID != nil {
		ref := *a.ReferrerID
		c.ReferrerID = &ref
	}
	return &c
}

var _ ledger.Store = (*Store)(nil)
