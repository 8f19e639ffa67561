package service

import (
	"errors"
	"fmt"
	"log"
	"math"

	"taskpay/config"
	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

// ReferralStore covers the commission configuration, invite codes, and
// earning rows.
type ReferralStore interface {
	Levels() ([]models.ReferralLevel, error)
	GetCodeOwner(code string) (*models.ReferralCode, error)
	EarningExists(sourceEventID string, level int) (bool, error)
	CreateEarning(tx *gorm.DB, e *models.ReferralEarning) error
}

// ReferralUserStore resolves the referral back-references.
type ReferralUserStore interface {
	ReferrerOf(userID uint) (uint, error)
	SetReferrer(userID, referrerID uint) error
}

// ReferralService walks a user's referral ancestry and fans a share of each
// earning event out to the configured levels.
type ReferralService struct {
	cfg      *config.ReferralConfig
	runner   TxRunner
	ledger   *LedgerService
	store    ReferralStore
	users    ReferralUserStore
	notifier Notifier
}

func NewReferralService(
	cfg *config.ReferralConfig,
	runner TxRunner,
	ledger *LedgerService,
	store ReferralStore,
	users ReferralUserStore,
	notifier Notifier,
) *ReferralService {
	return &ReferralService{cfg: cfg, runner: runner, ledger: ledger, store: store, users: users, notifier: notifier}
}

// ClaimCode records that a newly registered user was recruited by the owner
// of the given invite code. Assignment happens once, at account creation,
// which keeps the referral graph a DAG; the ancestry check below asserts the
// invariant anyway.
func (s *ReferralService) ClaimCode(code string, newUserID uint) error {
	rc, err := s.store.GetCodeOwner(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Validationf("unknown referral code")
		}
		return err
	}
	if rc.UserID == newUserID {
		return domain.Validationf("cannot use your own referral code")
	}
	ancestor := rc.UserID
	for i := 0; i < s.cfg.MaxLevels && ancestor != 0; i++ {
		if ancestor == newUserID {
			return domain.Validationf("referral would create a cycle")
		}
		ancestor, err = s.users.ReferrerOf(ancestor)
		if err != nil {
			return err
		}
	}
	return s.users.SetReferrer(newUserID, rc.UserID)
}

// Distribute fans a source earning event of valuePoints out to the ancestors
// of sourceUserID: level 1 is the direct referrer, level 2 their referrer,
// and so on, up to the configured depth. Inactive levels are skipped without
// truncating the walk. Each level is one atomic, idempotent unit of work, so
// a partial failure can be retried without double-crediting committed levels.
func (s *ReferralService) Distribute(sourceUserID uint, sourceEventID string, valuePoints int64, sourceType string) error {
	if sourceEventID == "" {
		return domain.Validationf("source event id is required")
	}
	if valuePoints <= 0 {
		return nil
	}
	levels, err := s.store.Levels()
	if err != nil {
		return err
	}
	byLevel := make(map[int]models.ReferralLevel, len(levels))
	for _, l := range levels {
		byLevel[l.Level] = l
	}
	depth := len(levels)
	if depth > s.cfg.MaxLevels {
		depth = s.cfg.MaxLevels
	}

	current := sourceUserID
	for level := 1; level <= depth; level++ {
		ancestor, err := s.users.ReferrerOf(current)
		if err != nil {
			return fmt.Errorf("resolve ancestor at level %d: %w", level, err)
		}
		if ancestor == 0 {
			break // reached the root of the tree
		}
		if cfgLevel, ok := byLevel[level]; ok && cfgLevel.IsActive {
			if err := s.creditLevel(cfgLevel, ancestor, sourceUserID, sourceEventID, valuePoints, sourceType); err != nil {
				return fmt.Errorf("credit level %d: %w", level, err)
			}
		}
		current = ancestor
	}
	return nil
}

func (s *ReferralService) creditLevel(cfg models.ReferralLevel, ancestor, sourceUserID uint, sourceEventID string, valuePoints int64, sourceType string) error {
	share := commissionShare(cfg, valuePoints)
	if share <= 0 {
		return nil
	}
	exists, err := s.store.EarningExists(sourceEventID, cfg.Level)
	if err != nil {
		return err
	}
	if exists {
		return nil // already credited on a previous invocation
	}
	err = s.runner.Transact(func(tx *gorm.DB) error {
		if err := s.store.CreateEarning(tx, &models.ReferralEarning{
			UserID:        ancestor,
			SourceUserID:  sourceUserID,
			SourceEventID: sourceEventID,
			Level:         cfg.Level,
			Points:        share,
			SourceType:    sourceType,
		}); err != nil {
			return err
		}
		_, err := s.ledger.Apply(tx, Entry{
			UserID:      ancestor,
			Points:      share,
			Type:        domain.TxTypeReferralBonus,
			Status:      domain.TxStatusCompleted,
			Description: fmt.Sprintf("level %d referral commission", cfg.Level),
			Reference:   sourceEventID,
			Metadata:    map[string]interface{}{"level": cfg.Level, "source_user_id": sourceUserID},
		})
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil // lost a race with a concurrent retry; the credit stands
	}
	if err != nil {
		return err
	}
	if s.notifier != nil {
		if nerr := s.notifier.Notify(ancestor, "REFERRAL_CREDITED", "Referral commission",
			fmt.Sprintf("You earned %d points from a level %d referral.", share, cfg.Level),
			map[string]interface{}{"level": cfg.Level, "points": share, "source_event_id": sourceEventID}); nerr != nil {
			log.Printf("[referral] notify user %d failed: %v", ancestor, nerr)
		}
	}
	return nil
}

// commissionShare computes the points credited at one level: a percentage of
// the source event for PERCENTAGE, or the configured flat number of points.
func commissionShare(cfg models.ReferralLevel, valuePoints int64) int64 {
	switch cfg.CommissionType {
	case domain.CommissionPercentage:
		return int64(math.Round(float64(valuePoints) * cfg.CommissionValue / 100))
	case domain.CommissionFlat:
		return int64(math.Round(cfg.CommissionValue))
	default:
		return 0
	}
}
