// Package postgres stores the ledger in PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, ledger.NewStorageError("get account", err)
	}
	return &account, nil
}

func (s *Store) Create(ctx context.Context, account *models.Account, referralBonus int64) (ledger.CreateResult, error) {
	var result ledger.CreateResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newAccount := *account

		var referrer *models.Account
		if newAccount.ReferrerID != nil && *newAccount.ReferrerID != newAccount.ID {
			var ref models.Account
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ref, "id = ?", *newAccount.ReferrerID).Error
			switch {
			case err == nil:
				referrer = &ref
			case errors.Is(err, gorm.ErrRecordNotFound):
				newAccount.ReferrerID = nil
			default:
				return err
			}
		} else {
			newAccount.ReferrerID = nil
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&newAccount)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.Account
			if err := tx.First(&existing, "id = ?", newAccount.ID).Error; err != nil {
				return err
			}
			result = ledger.CreateResult{Account: &existing}
			return nil
		}

		result = ledger.CreateResult{Account: &newAccount, Created: true}
		if referrer == nil {
			return nil
		}

		if err := tx.Model(&models.Account{}).
			Where("id = ?", referrer.ID).
			Update("balance", gorm.Expr("balance + ?", referralBonus)).Error; err != nil {
			return err
		}
		referrer.Balance += referralBonus

		entry := models.NewLedgerEntry(referrer.ID, models.EntryReferral, referralBonus)
		source := newAccount.ID
		entry.SourceID = &source
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		result.Referrer = referrer
		return nil
	})
	if err != nil {
		return ledger.CreateResult{}, ledger.NewStorageError("create account", err)
	}
	return result, nil
}

// Update locks the account row for the length of the transaction, so two
// claims for the same account never both read the old timestamps.
func (s *Store) Update(ctx context.Context, id int64, fn ledger.MutateFunc) (*models.Account, error) {
	var (
		updated *models.Account
		fnErr   error
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, "id = ?", id).Error; err != nil {
			return err
		}

		stored := account
		entry, err := fn(&account)
		if err != nil {
			fnErr = err
			return err
		}
		if entry == nil {
			updated = &stored
			return nil
		}

		if err := tx.Save(&account).Error; err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		updated = &account
		return nil
	})

	switch {
	case fnErr != nil:
		return nil, fnErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ledger.ErrNotFound
	case err != nil:
		return nil, ledger.NewStorageError("update account", err)
	}
	return updated, nil
}

func (s *Store) SetDisplayName(ctx context.Context, id int64, name string) error {
	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("display_name", name)
	if res.Error != nil {
		return ledger.NewStorageError("set display name", res.Error)
	}
	if res.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) Top(ctx context.Context, limit int) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).
		Order("balance DESC").
		Order("id ASC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, ledger.NewStorageError("leaderboard", err)
	}
	return accounts, nil
}

func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Select("COUNT(*) AS user_count, COALESCE(SUM(balance), 0) AS total_balance").
		Scan(&stats).Error
	if err != nil {
		return models.Stats{}, ledger.NewStorageError("stats", err)
	}
	return stats, nil
}

func (s *Store) Referrals(ctx context.Context, referrerID int64) ([]models.Account, error) {
	referrals := []models.Account{}
	err := s.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&referrals).Error
	if err != nil {
		return nil, ledger.NewStorageError("list referrals", err)
	}
	return referrals, nil
}

func (s *Store) ReferralEarnings(ctx context.Context, referrerID int64) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("account_id = ? AND kind = ?", referrerID, models.EntryReferral).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, ledger.NewStorageError("referral earnings", err)
	}
	return total, nil
}

func (s *Store) BonusReady(ctx context.Context, cutoff int64) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).
		Where("last_bonus_at > 0 AND last_bonus_at <= ?", cutoff).
		Order("id ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, ledger.NewStorageError("bonus ready", err)
	}
	return accounts, nil
}

var _ ledger.Store = (*Store)(nil)
