package models

import (
	"time"

	"github.com/google/uuid"
)

type EntryKind string

const (
	EntryFarm     EntryKind = "farm"
	EntryBonus    EntryKind = "bonus"
	EntryReferral EntryKind = "referral"
)

// LedgerEntry records one credit to an account. SourceID is the invited
// account for referral credits.
type LedgerEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID int64     `gorm:"not null;index"`
	Kind      EntryKind `gorm:"size:16;not null;index"`
	Amount    int64     `gorm:"not null"`
	SourceID  *int64    `gorm:"index"`
	CreatedAt time.Time
}

func NewLedgerEntry(accountID int64, kind EntryKind, amount int64) *LedgerEntry {
	return &LedgerEntry{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
	}
}
