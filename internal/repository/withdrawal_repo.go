package repository

import (
	"errors"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *WithdrawalRepository) Create(tx *gorm.DB, w *models.Withdrawal) error {
	return r.conn(tx).Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// LastForCooldown returns the user's most recent withdrawal that counts
// against the cooldown window (rejected and cancelled requests do not).
func (r *WithdrawalRepository) LastForCooldown(userID uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.Where("user_id = ? AND status IN ?", userID,
		[]string{domain.WithdrawalPending, domain.WithdrawalProcessing, domain.WithdrawalCompleted}).
		Order("created_at DESC").
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// UpdateStatusIf is the compare-and-set guard on withdrawal status: the
// update applies only while the row is still in one of the from states.
// Returns false when another transition won the race (or already resolved
// the withdrawal).
func (r *WithdrawalRepository) UpdateStatusIf(tx *gorm.DB, id uint, from []string, updates map[string]interface{}) (bool, error) {
	res := r.conn(tx).Model(&models.Withdrawal{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *WithdrawalRepository) ListByUser(userID uint, limit, offset int) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *WithdrawalRepository) ListByStatus(status string, limit, offset int) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// StatusSummary is one line of the per-user withdrawal aggregate.
type StatusSummary struct {
	Status     string `json:"status"`
	Count      int64  `json:"count"`
	TotalCents int64  `json:"total_cents"`
}

func (r *WithdrawalRepository) SummaryByUser(userID uint) ([]StatusSummary, error) {
	var rows []StatusSummary
	err := r.db.Model(&models.Withdrawal{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount_cents),0) AS total_cents").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}
