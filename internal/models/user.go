package models

import (
	"time"

	"taskpay/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index;default:'USER'" json:"role"` // USER | ADMIN
	KycStatus    string         `gorm:"size:20;not null;default:'PENDING'" json:"kyc_status"`
	PackageID    *uint          `gorm:"index" json:"package_id"`
	// ReferredByID is the referral back-reference: the user who recruited this
	// one. Assigned once at registration, never reassigned, so the referral
	// graph stays a DAG.
	ReferredByID *uint          `gorm:"index" json:"referred_by_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Package    *Package `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	ReferredBy *User    `gorm:"foreignKey:ReferredByID" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool     { return u.Role == domain.RoleAdmin }
func (u *User) KycApproved() bool { return u.KycStatus == domain.KycApproved }
