package models

import (
	"time"

	"gorm.io/gorm"
)

// LedgerAccount is the per-user balance record. It is mutated only through
// the transaction log: every balance change pairs with a Transaction row in
// the same database transaction.
type LedgerAccount struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	UserID                uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	PointsBalance         int64          `gorm:"not null;default:0" json:"points_balance"`
	CashBalanceCents      int64          `gorm:"not null;default:0" json:"cash_balance_cents"`
	TotalEarningsCents    int64          `gorm:"not null;default:0" json:"total_earnings_cents"`
	TotalWithdrawalsCents int64          `gorm:"not null;default:0" json:"total_withdrawals_cents"`
	Currency              string         `gorm:"size:3;default:'USD'" json:"currency"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (LedgerAccount) TableName() string { return "ledger_accounts" }
