package repository

import (
	"taskpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// conn returns the ambient transaction when one is supplied, so that a call
// participates in the caller's unit of work.
func (r *LedgerRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *LedgerRepository) GetByUserID(userID uint) (*models.LedgerAccount, error) {
	var a models.LedgerAccount
	if err := r.db.Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *LedgerRepository) GetOrCreate(userID uint) (*models.LedgerAccount, error) {
	a, err := r.GetByUserID(userID)
	if err == nil {
		return a, nil
	}
	a = &models.LedgerAccount{UserID: userID}
	if err := r.db.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetForUpdate loads the account row under SELECT ... FOR UPDATE, serializing
// concurrent balance mutations for the same user. Must be called inside a
// transaction.
func (r *LedgerRepository) GetForUpdate(tx *gorm.DB, userID uint) (*models.LedgerAccount, error) {
	var a models.LedgerAccount
	err := r.conn(tx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ApplyDelta adjusts the account balances by the signed deltas. Callers hold
// the row lock and have already checked the non-negative invariant.
func (r *LedgerRepository) ApplyDelta(tx *gorm.DB, userID uint, points, amountCents int64) error {
	return r.conn(tx).Model(&models.LedgerAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"points_balance":     gorm.Expr("points_balance + ?", points),
			"cash_balance_cents": gorm.Expr("cash_balance_cents + ?", amountCents),
		}).Error
}

// AddTotals bumps the cumulative earning/withdrawal counters.
func (r *LedgerRepository) AddTotals(tx *gorm.DB, userID uint, earningsCents, withdrawalsCents int64) error {
	updates := map[string]interface{}{}
	if earningsCents != 0 {
		updates["total_earnings_cents"] = gorm.Expr("total_earnings_cents + ?", earningsCents)
	}
	if withdrawalsCents != 0 {
		updates["total_withdrawals_cents"] = gorm.Expr("total_withdrawals_cents + ?", withdrawalsCents)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.conn(tx).Model(&models.LedgerAccount{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
