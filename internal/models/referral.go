package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralCode is a unique invite code belonging to a user.
// Each user has at most one referral code.
type ReferralCode struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Code      string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ReferralCode) TableName() string { return "referral_codes" }

// ReferralLevel configures one slot of the commission fan-out. There are at
// most 10 rows, keyed by Level (1 = direct referrer). CommissionValue is a
// percentage of the source event for PERCENTAGE, or a fixed number of points
// for FLAT; it is never negative.
type ReferralLevel struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Level           int            `gorm:"uniqueIndex;not null" json:"level"` // 1..10
	CommissionType  string         `gorm:"size:20;not null;default:'PERCENTAGE'" json:"commission_type"`
	CommissionValue float64        `gorm:"not null;default:0" json:"commission_value"`
	IsActive        bool           `gorm:"default:false" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ReferralLevel) TableName() string { return "referral_levels" }

// ReferralEarning is one commission credit produced by the fan-out: one row
// per (source event, ancestor level). The composite unique index is what
// makes a retried fan-out idempotent.
type ReferralEarning struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index;uniqueIndex:idx_earning_event_user_level" json:"user_id"`
	SourceUserID  uint           `gorm:"not null;index" json:"source_user_id"`
	SourceEventID string         `gorm:"size:64;not null;uniqueIndex:idx_earning_event_user_level" json:"source_event_id"`
	Level         int            `gorm:"not null;uniqueIndex:idx_earning_event_user_level" json:"level"`
	Points        int64          `gorm:"not null" json:"points"`
	SourceType    string         `gorm:"size:30;not null" json:"source_type"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User       User `gorm:"foreignKey:UserID" json:"-"`
	SourceUser User `gorm:"foreignKey:SourceUserID" json:"-"`
}

func (ReferralEarning) TableName() string { return "referral_earnings" }
