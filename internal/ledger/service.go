package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"stars-bot/internal/models"
)

const (
	DefaultLeaderboardLimit = 10
	notifyTimeout           = 10 * time.Second
)

// Settings holds the tunable economy. Cooldowns are in seconds.
type Settings struct {
	FarmCooldown  int64
	FarmReward    int64
	BonusCooldown int64
	BonusReward   int64
	ReferralBonus int64
}

func DefaultSettings() Settings {
	return Settings{
		FarmCooldown:  60,
		FarmReward:    1,
		BonusCooldown: 3600,
		BonusReward:   5,
		ReferralBonus: 10,
	}
}

// Notifier delivers the referral bonus message to the referrer.
type Notifier interface {
	ReferralCredited(ctx context.Context, referrer, invited models.Account, bonus int64) error
}

type FarmResult struct {
	Granted          bool
	SecondsRemaining int64
	NewBalance       int64
}

type BonusResult struct {
	Granted          bool
	MinutesRemaining int64
	NewBalance       int64
}

type LeaderboardEntry struct {
	Rank        int
	ID          int64
	DisplayName string
	Balance     int64
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the account ledger: claims, referral crediting and aggregate reads.
type Service struct {
	store    Store
	notifier Notifier
	settings Settings
	now      func() time.Time

	pending sync.WaitGroup
}

func NewService(store Store, notifier Notifier, settings Settings, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Settings() Settings {
	return s.settings
}

// GetOrCreate returns the account for id, creating it on first contact.
// referrerID is only honored when the account is created; self-referrals
// and unknown referrers are ignored.
func (s *Service) GetOrCreate(ctx context.Context, id int64, displayName string, referrerID *int64) (*models.Account, bool, error) {
	account, err := s.store.Get(ctx, id)
	if err == nil {
		if displayName != "" && displayName != account.DisplayName {
			if err := s.store.SetDisplayName(ctx, id, displayName); err != nil {
				return nil, false, err
			}
			account.DisplayName = displayName
		}
		return account, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if referrerID != nil && *referrerID == id {
		log.WithField("account_id", id).Debug("Ignoring self-referral")
		referrerID = nil
	}

	result, err := s.store.Create(ctx, &models.Account{
		ID:          id,
		DisplayName: displayName,
		ReferrerID:  referrerID,
	}, s.settings.ReferralBonus)
	if err != nil {
		return nil, false, err
	}

	if result.Created {
		entry := log.WithField("account_id", id)
		if result.Referrer != nil {
			entry = entry.WithField("referrer_id", result.Referrer.ID)
			s.notifyReferral(*result.Referrer, *result.Account)
		} else if referrerID != nil {
			entry.WithField("referrer_id", *referrerID).Debug("Referrer not found, skipping bonus")
		}
		entry.Info("Account created")
	}

	return result.Account, result.Created, nil
}

// notifyReferral runs detached from the request: a failed delivery is logged
// and never undoes the credit.
func (s *Service) notifyReferral(referrer, invited models.Account) {
	if s.notifier == nil {
		return
	}
	bonus := s.settings.ReferralBonus

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.ReferralCredited(ctx, referrer, invited, bonus); err != nil {
			log.WithError(err).WithField("referrer_id", referrer.ID).Warn("Failed to deliver referral notification")
		}
	}()
}

// Wait blocks until in-flight notifications have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) ClaimFarm(ctx context.Context, id int64) (FarmResult, error) {
	now := s.now().Unix()
	reward := s.settings.FarmReward

	var result FarmResult
	account, err := s.store.Update(ctx, id, func(a *models.Account) (*models.LedgerEntry, error) {
		if remaining := cooldownRemaining(a.LastFarmAt, now, s.settings.FarmCooldown); remaining > 0 {
			result.SecondsRemaining = remaining
			return nil, nil
		}
		a.Balance += reward
		a.LastFarmAt = now
		result.Granted = true
		return models.NewLedgerEntry(a.ID, models.EntryFarm, reward), nil
	})
	if err != nil {
		return FarmResult{}, err
	}

	result.NewBalance = account.Balance
	return result, nil
}

func (s *Service) ClaimBonus(ctx context.Context, id int64) (BonusResult, error) {
	now := s.now().Unix()
	reward := s.settings.BonusReward

	var result BonusResult
	account, err := s.store.Update(ctx, id, func(a *models.Account) (*models.LedgerEntry, error) {
		if remaining := cooldownRemaining(a.LastBonusAt, now, s.settings.BonusCooldown); remaining > 0 {
			result.MinutesRemaining = (remaining + 59) / 60
			return nil, nil
		}
		a.Balance += reward
		a.LastBonusAt = now
		result.Granted = true
		return models.NewLedgerEntry(a.ID, models.EntryBonus, reward), nil
	})
	if err != nil {
		return BonusResult{}, err
	}

	result.NewBalance = account.Balance
	return result, nil
}

// cooldownRemaining is the wait in seconds before a claim last made at last is
// available again. A zero last means never claimed.
func cooldownRemaining(last, now, cooldown int64) int64 {
	if last == 0 {
		return 0
	}
	elapsed := now - last
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

func (s *Service) GetProfile(ctx context.Context, id int64) (*models.Account, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	accounts, err := s.store.Top(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(accounts))
	for i, a := range accounts {
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			ID:          a.ID,
			DisplayName: a.DisplayName,
			Balance:     a.Balance,
		})
	}
	return entries, nil
}

func (s *Service) GetAggregateStats(ctx context.Context) (models.Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) ListReferrals(ctx context.Context, referrerID int64) ([]models.Account, error) {
	referrals, err := s.store.Referrals(ctx, referrerID)
	if err != nil {
		return nil, err
	}
	if referrals == nil {
		referrals = []models.Account{}
	}
	return referrals, nil
}

func (s *Service) ReferralEarnings(ctx context.Context, referrerID int64) (int64, error) {
	return s.store.ReferralEarnings(ctx, referrerID)
}
