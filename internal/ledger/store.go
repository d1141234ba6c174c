package ledger

import (
	"context"

	"stars-bot/internal/models"
)

// CreateResult describes the outcome of Store.Create.
type CreateResult struct {
	Account *models.Account
	// Created is false when the account already existed and was returned as is.
	Created bool
	// Referrer is the credited referrer, nil when no referral bonus was paid.
	Referrer *models.Account
}

// MutateFunc changes an account in place. Returning a nil entry means the
// account is left untouched and nothing is written.
type MutateFunc func(account *models.Account) (*models.LedgerEntry, error)

// Store persists accounts and their ledger entries. Create and Update must be
// atomic with respect to concurrent calls for the same account.
type Store interface {
	Get(ctx context.Context, id int64) (*models.Account, error)

	// Create inserts account unless one with the same ID exists. When the
	// account is inserted with a ReferrerID that names another existing
	// account, that account's balance grows by referralBonus in the same
	// transaction. An unknown referrer is dropped from the new account.
	Create(ctx context.Context, account *models.Account, referralBonus int64) (CreateResult, error)

	Update(ctx context.Context, id int64, fn MutateFunc) (*models.Account, error)
	SetDisplayName(ctx context.Context, id int64, name string) error

	// Top orders by balance descending, then id ascending.
	Top(ctx context.Context, limit int) ([]models.Account, error)
	Stats(ctx context.Context) (models.Stats, error)
	Referrals(ctx context.Context, referrerID int64) ([]models.Account, error)
	ReferralEarnings(ctx context.Context, referrerID int64) (int64, error)

	// BonusReady lists accounts that have claimed a bonus at least once, last at or before cutoff.
	BonusReady(ctx context.Context, cutoff int64) ([]models.Account, error)
}
