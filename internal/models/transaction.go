package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is one row of the append-only balance log. Deltas are signed:
// positive = credit, negative = debit. Summing all deltas for a user
// reproduces the ledger account balances. Rows are immutable once created;
// only Status may transition (PENDING -> COMPLETED | REJECTED).
type Transaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Type        string         `gorm:"size:30;not null;index" json:"type"`
	Status      string         `gorm:"size:20;not null;index;default:'COMPLETED'" json:"status"`
	Points      int64          `gorm:"not null;default:0" json:"points"`
	AmountCents int64          `gorm:"not null;default:0" json:"amount_cents"`
	Description string         `gorm:"size:255" json:"description"`
	Reference   string         `gorm:"size:128;index" json:"reference"` // withdrawal reference, source event id, ...
	Metadata    string         `gorm:"type:text" json:"metadata"`       // source-specific JSON
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string { return "transactions" }
