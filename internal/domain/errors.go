package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInsufficientBalance = errors.New("insufficient points balance")
	ErrInvalidTransition   = errors.New("invalid withdrawal state transition")
	ErrNotFound            = errors.New("not found")
)

// ValidationError is a business-rule violation detected before any mutation.
// The message is safe to echo to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// KycRequiredError is returned when a withdrawal above the KYC threshold is
// requested by a user whose KYC status is not APPROVED.
type KycRequiredError struct {
	ThresholdCents int64
}

func (e *KycRequiredError) Error() string {
	return fmt.Sprintf("KYC approval required for withdrawals above %d.%02d", e.ThresholdCents/100, e.ThresholdCents%100)
}

// CooldownError is returned when a withdrawal is requested before the
// cooldown window since the user's previous request has elapsed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("withdrawal cooldown active, try again in %s", e.Remaining.Round(time.Minute))
}
