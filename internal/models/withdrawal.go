package models

import (
	"time"

	"taskpay/internal/domain"

	"gorm.io/gorm"
)

// AccountDetails is the payout destination for a withdrawal. Which fields are
// required depends on the method; Validate covers every supported method so a
// new method cannot be added without declaring its required fields.
type AccountDetails struct {
	AccountNumber string `json:"account_number,omitempty"` // BKASH / NAGAD / ROCKET
	Email         string `json:"email,omitempty"`          // PAYPAL
	BankName      string `json:"bank_name,omitempty"`      // BANK
	AccountName   string `json:"account_name,omitempty"`   // BANK
	RoutingNumber string `json:"routing_number,omitempty"` // BANK
}

// Validate reports whether the details carry the fields the method requires.
func (d AccountDetails) Validate(method string) error {
	switch method {
	case domain.MethodBkash, domain.MethodNagad, domain.MethodRocket:
		if d.AccountNumber == "" {
			return domain.Validationf("account_number is required for %s", method)
		}
	case domain.MethodPaypal:
		if d.Email == "" {
			return domain.Validationf("email is required for %s", method)
		}
	case domain.MethodBank:
		if d.AccountNumber == "" || d.BankName == "" || d.AccountName == "" {
			return domain.Validationf("account_number, bank_name and account_name are required for %s", method)
		}
	default:
		return domain.Validationf("unsupported withdrawal method: %s", method)
	}
	return nil
}

// Withdrawal is a payout request. It is created PENDING with fee and net
// amount frozen at request time, and reaches exactly one terminal state.
type Withdrawal struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Reference       string         `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	AmountCents     int64          `gorm:"not null" json:"amount_cents"`
	FeeCents        int64          `gorm:"not null" json:"fee_cents"`
	NetAmountCents  int64          `gorm:"not null" json:"net_amount_cents"`
	HoldPoints      int64          `gorm:"not null" json:"hold_points"` // points debited at request time
	Method          string         `gorm:"size:20;not null;index" json:"method"`
	AccountDetails  AccountDetails `gorm:"serializer:json;type:text" json:"account_details"`
	Status          string         `gorm:"size:20;not null;index" json:"status"`
	TransactionID   string         `gorm:"size:128" json:"transaction_id"` // external payout reference
	RejectionReason string         `gorm:"size:255" json:"rejection_reason"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }

// Terminal reports whether no further status transition is permitted.
func (w *Withdrawal) Terminal() bool {
	switch w.Status {
	case domain.WithdrawalCompleted, domain.WithdrawalRejected, domain.WithdrawalCancelled:
		return true
	}
	return false
}
