package service

import (
	"fmt"
	"log"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"github.com/google/uuid"
)

// RewardService is the entry point for earning events: it credits the
// earner's ledger and fans the commission out to the referral ancestors.
type RewardService struct {
	ledger    *LedgerService
	referrals *ReferralService
	notifier  Notifier
}

func NewRewardService(ledger *LedgerService, referrals *ReferralService, notifier Notifier) *RewardService {
	return &RewardService{ledger: ledger, referrals: referrals, notifier: notifier}
}

// GrantTaskReward credits a completed task. sourceRef correlates the event to
// the task system and doubles as the idempotency key for the commission
// fan-out; when empty a fresh one is generated.
func (s *RewardService) GrantTaskReward(userID uint, points, amountCents int64, sourceRef, description string) (*models.Transaction, error) {
	if points <= 0 && amountCents <= 0 {
		return nil, domain.Validationf("reward must carry points or cash")
	}
	if points < 0 || amountCents < 0 {
		return nil, domain.Validationf("reward deltas cannot be negative")
	}
	if sourceRef == "" {
		sourceRef = "task-" + uuid.New().String()
	}
	if description == "" {
		description = "task reward"
	}
	t, err := s.ledger.Credit(Entry{
		UserID:      userID,
		Points:      points,
		AmountCents: amountCents,
		Type:        domain.TxTypeTaskReward,
		Status:      domain.TxStatusCompleted,
		Description: description,
		Reference:   sourceRef,
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if nerr := s.notifier.Notify(userID, "REWARD_CREDITED", "Reward credited",
			fmt.Sprintf("You earned %d points for %s.", points, description), map[string]interface{}{
				"points":    points,
				"reference": sourceRef,
			}); nerr != nil {
			log.Printf("[reward] notify user %d failed: %v", userID, nerr)
		}
	}
	// The fan-out is idempotent per (event, level), so a failure here is
	// retryable without touching the reward itself.
	if err := s.referrals.Distribute(userID, sourceRef, points, domain.SourceTaskReward); err != nil {
		log.Printf("[reward] commission fan-out for %s failed: %v", sourceRef, err)
	}
	return t, nil
}

// GrantAdjustment applies a signed admin correction to a user's balances.
// Adjustments do not trigger commission fan-out.
func (s *RewardService) GrantAdjustment(userID uint, points, amountCents int64, description string) (*models.Transaction, error) {
	if points == 0 && amountCents == 0 {
		return nil, domain.Validationf("adjustment must change points or cash")
	}
	if description == "" {
		return nil, domain.Validationf("description is required for adjustments")
	}
	return s.ledger.Credit(Entry{
		UserID:      userID,
		Points:      points,
		AmountCents: amountCents,
		Type:        domain.TxTypeAdjustment,
		Status:      domain.TxStatusCompleted,
		Description: description,
		Reference:   "adj-" + uuid.New().String(),
	})
}
