package models

import (
	"time"
)

// Account is a user's ledger record. ID is the Telegram user id.
type Account struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	DisplayName string `gorm:"size:255"`
	Balance     int64  `gorm:"not null;default:0;index"`
	LastFarmAt  int64  `gorm:"not null;default:0"`
	LastBonusAt int64  `gorm:"not null;default:0;index"`
	ReferrerID  *int64 `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Stats is the aggregate over every account.
type Stats struct {
	UserCount    int64
	TotalBalance int64
}
