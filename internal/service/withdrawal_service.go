package service

import (
	"fmt"
	"log"
	"time"

	"taskpay/config"
	"taskpay/internal/domain"
	"taskpay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalStore is the minimal withdrawal interface for the state machine.
type WithdrawalStore interface {
	Create(tx *gorm.DB, w *models.Withdrawal) error
	GetByID(id uint) (*models.Withdrawal, error)
	LastForCooldown(userID uint) (*models.Withdrawal, error)
	UpdateStatusIf(tx *gorm.DB, id uint, from []string, updates map[string]interface{}) (bool, error)
}

// UserStore is the minimal user interface for withdrawal validation.
type UserStore interface {
	GetByID(id uint) (*models.User, error)
}

// PackageStore resolves a user's package tier.
type PackageStore interface {
	GetByID(id uint) (*models.Package, error)
}

// Notifier delivers user-facing events. Fire-and-forget: the core never
// depends on delivery succeeding.
type Notifier interface {
	Notify(userID uint, notifType, title, body string, data map[string]interface{}) error
}

// WithdrawalService orchestrates the withdrawal lifecycle:
// PENDING -> PROCESSING -> COMPLETED | REJECTED, PENDING -> REJECTED,
// PENDING -> CANCELLED. Funds are held (debited) at request time and
// refunded on rejection or cancellation.
type WithdrawalService struct {
	cfg         *config.WithdrawalConfig
	runner      TxRunner
	ledger      *LedgerService
	withdrawals WithdrawalStore
	users       UserStore
	packages    PackageStore
	notifier    Notifier
	now         func() time.Time
}

func NewWithdrawalService(
	cfg *config.WithdrawalConfig,
	runner TxRunner,
	ledger *LedgerService,
	withdrawals WithdrawalStore,
	users UserStore,
	packages PackageStore,
	notifier Notifier,
) *WithdrawalService {
	return &WithdrawalService{
		cfg:         cfg,
		runner:      runner,
		ledger:      ledger,
		withdrawals: withdrawals,
		users:       users,
		packages:    packages,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Create validates a withdrawal request and, if every check passes, creates
// the PENDING withdrawal and holds the funds in one atomic step. All
// business-rule checks run before any mutation.
func (s *WithdrawalService) Create(userID uint, amountCents int64, method string, details models.AccountDetails) (*models.Withdrawal, error) {
	if amountCents <= 0 {
		return nil, domain.Validationf("amount must be positive")
	}
	if !SupportedMethod(method) {
		return nil, domain.Validationf("unsupported withdrawal method: %s", method)
	}
	if err := details.Validate(method); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	var pkg *models.Package
	if user.PackageID != nil {
		pkg, err = s.packages.GetByID(*user.PackageID)
		if err != nil {
			return nil, err
		}
	}
	if err := CheckWithdrawalMinimums(method, amountCents, pkg); err != nil {
		return nil, err
	}
	if amountCents > s.cfg.KycThresholdCents && !user.KycApproved() {
		return nil, &domain.KycRequiredError{ThresholdCents: s.cfg.KycThresholdCents}
	}
	last, err := s.withdrawals.LastForCooldown(userID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		if elapsed := s.now().Sub(last.CreatedAt); elapsed < s.cfg.Cooldown {
			return nil, &domain.CooldownError{Remaining: s.cfg.Cooldown - elapsed}
		}
	}
	hold := HoldPoints(amountCents, s.cfg.PointsPerUnit)
	available, err := s.ledger.AvailableBalance(userID)
	if err != nil {
		return nil, err
	}
	if available < hold {
		return nil, domain.ErrInsufficientBalance
	}
	quote, err := QuoteFee(method, amountCents, pkg)
	if err != nil {
		return nil, err
	}
	if quote.NetAmountCents <= 0 {
		return nil, domain.Validationf("amount does not cover the %s fee", method)
	}

	w := &models.Withdrawal{
		UserID:         userID,
		Reference:      "wd-" + uuid.New().String(),
		AmountCents:    amountCents,
		FeeCents:       quote.FeeCents,
		NetAmountCents: quote.NetAmountCents,
		HoldPoints:     hold,
		Method:         method,
		AccountDetails: details,
		Status:         domain.WithdrawalPending,
	}
	// The withdrawal row and the hold share one transaction: the balance
	// re-check under the account row lock is what closes the race between
	// concurrent requests.
	err = s.runner.Transact(func(tx *gorm.DB) error {
		if err := s.withdrawals.Create(tx, w); err != nil {
			return err
		}
		_, err := s.ledger.Apply(tx, Entry{
			UserID:      userID,
			Points:      -hold,
			Type:        domain.TxTypeWithdrawal,
			Status:      domain.TxStatusPending,
			Description: fmt.Sprintf("withdrawal hold via %s", method),
			Reference:   w.Reference,
			Metadata:    map[string]interface{}{"withdrawal_id": w.ID, "method": method},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, "WITHDRAWAL_SUBMITTED", "Withdrawal submitted",
		fmt.Sprintf("Your withdrawal of %s is pending review.", s.formatCents(amountCents)),
		map[string]interface{}{"withdrawal_id": w.ID, "reference": w.Reference})
	return w, nil
}

// MarkProcessing moves a PENDING withdrawal into the optional PROCESSING
// step while an admin works the payout.
func (s *WithdrawalService) MarkProcessing(id uint) (*models.Withdrawal, error) {
	if _, err := s.withdrawals.GetByID(id); err != nil {
		return nil, err
	}
	err := s.runner.Transact(func(tx *gorm.DB) error {
		ok, err := s.withdrawals.UpdateStatusIf(tx, id, []string{domain.WithdrawalPending},
			map[string]interface{}{"status": domain.WithdrawalProcessing})
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.withdrawals.GetByID(id)
}

// Approve finalizes a PENDING or PROCESSING withdrawal. The points were
// already removed at hold time, so no balance change happens here beyond the
// cumulative withdrawn counter.
func (s *WithdrawalService) Approve(id uint, externalTxID string) (*models.Withdrawal, error) {
	w, err := s.withdrawals.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.runner.Transact(func(tx *gorm.DB) error {
		ok, err := s.withdrawals.UpdateStatusIf(tx, id,
			[]string{domain.WithdrawalPending, domain.WithdrawalProcessing},
			map[string]interface{}{
				"status":         domain.WithdrawalCompleted,
				"transaction_id": externalTxID,
				"processed_at":   s.now(),
			})
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		if err := s.ledger.ResolveReference(tx, w.Reference, domain.TxStatusCompleted); err != nil {
			return err
		}
		return s.ledger.RecordWithdrawalTotal(tx, w.UserID, w.AmountCents)
	})
	if err != nil {
		return nil, err
	}
	s.notify(w.UserID, "WITHDRAWAL_APPROVED", "Withdrawal approved",
		fmt.Sprintf("Your withdrawal of %s was approved and paid out.", s.formatCents(w.AmountCents)),
		map[string]interface{}{"withdrawal_id": w.ID, "transaction_id": externalTxID})
	return s.withdrawals.GetByID(id)
}

// Reject resolves a PENDING or PROCESSING withdrawal with a mandatory reason
// and refunds the held points in the same transaction.
func (s *WithdrawalService) Reject(id uint, reason string) (*models.Withdrawal, error) {
	if reason == "" {
		return nil, domain.Validationf("rejection_reason is required")
	}
	w, err := s.withdrawals.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.runner.Transact(func(tx *gorm.DB) error {
		ok, err := s.withdrawals.UpdateStatusIf(tx, id,
			[]string{domain.WithdrawalPending, domain.WithdrawalProcessing},
			map[string]interface{}{
				"status":           domain.WithdrawalRejected,
				"rejection_reason": reason,
				"processed_at":     s.now(),
			})
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return s.refund(tx, w)
	})
	if err != nil {
		return nil, err
	}
	s.notify(w.UserID, "WITHDRAWAL_REJECTED", "Withdrawal rejected",
		fmt.Sprintf("Your withdrawal of %s was rejected: %s", s.formatCents(w.AmountCents), reason),
		map[string]interface{}{"withdrawal_id": w.ID, "reason": reason})
	return s.withdrawals.GetByID(id)
}

// Cancel lets the requesting user withdraw a request that is still PENDING.
// Refund semantics match Reject; the distinct status is kept for audit.
func (s *WithdrawalService) Cancel(id, userID uint) (*models.Withdrawal, error) {
	w, err := s.withdrawals.GetByID(id)
	if err != nil {
		return nil, err
	}
	if userID != 0 && w.UserID != userID {
		return nil, domain.ErrNotFound
	}
	err = s.runner.Transact(func(tx *gorm.DB) error {
		ok, err := s.withdrawals.UpdateStatusIf(tx, id,
			[]string{domain.WithdrawalPending},
			map[string]interface{}{
				"status":       domain.WithdrawalCancelled,
				"processed_at": s.now(),
			})
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return s.refund(tx, w)
	})
	if err != nil {
		return nil, err
	}
	s.notify(w.UserID, "WITHDRAWAL_CANCELLED", "Withdrawal cancelled",
		fmt.Sprintf("Your withdrawal of %s was cancelled and the points returned.", s.formatCents(w.AmountCents)),
		map[string]interface{}{"withdrawal_id": w.ID})
	return s.withdrawals.GetByID(id)
}

// refund returns the held points with a compensating credit and marks the
// original hold transaction REJECTED. Runs inside the resolution transaction.
func (s *WithdrawalService) refund(tx *gorm.DB, w *models.Withdrawal) error {
	_, err := s.ledger.Apply(tx, Entry{
		UserID:      w.UserID,
		Points:      w.HoldPoints,
		Type:        domain.TxTypeWithdrawalRefund,
		Status:      domain.TxStatusCompleted,
		Description: fmt.Sprintf("refund of withdrawal hold %s", w.Reference),
		Reference:   w.Reference,
		Metadata:    map[string]interface{}{"withdrawal_id": w.ID},
	})
	if err != nil {
		return err
	}
	return s.ledger.ResolveReference(tx, w.Reference, domain.TxStatusRejected)
}

func (s *WithdrawalService) notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(userID, notifType, title, body, data); err != nil {
		log.Printf("[withdrawal] notify %s failed for user %d: %v", notifType, userID, err)
	}
}

func (s *WithdrawalService) formatCents(cents int64) string {
	return fmt.Sprintf("%s %d.%02d", s.cfg.Currency, cents/100, cents%100)
}
