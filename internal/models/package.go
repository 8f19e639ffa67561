package models

import (
	"time"

	"gorm.io/gorm"
)

// Package is a subscription tier. The withdrawal engine reads the per-tier
// minimum and the fee discount; everything else about packages lives outside
// this core.
type Package struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"uniqueIndex;size:64;not null" json:"name"`
	MinWithdrawalCents int64          `gorm:"not null;default:0" json:"min_withdrawal_cents"`
	FeeDiscount        float64        `gorm:"not null;default:0" json:"fee_discount"` // percentage points off the method fee
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Package) TableName() string { return "packages" }
