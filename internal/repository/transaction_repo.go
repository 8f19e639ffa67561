package repository

import (
	"taskpay/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *TransactionRepository) Create(tx *gorm.DB, t *models.Transaction) error {
	return r.conn(tx).Create(t).Error
}

// UpdateStatusByReference transitions all transactions carrying the given
// reference from one status to another (used when a withdrawal resolves).
func (r *TransactionRepository) UpdateStatusByReference(tx *gorm.DB, reference, from, to string) error {
	return r.conn(tx).Model(&models.Transaction{}).
		Where("reference = ? AND status = ?", reference, from).
		Update("status", to).Error
}

func (r *TransactionRepository) ListByUser(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// SumDeltas returns the summed points and cash deltas for a user across the
// whole log. Reconciliation helper: the result must equal the account
// balances.
func (r *TransactionRepository) SumDeltas(userID uint) (points int64, amountCents int64, err error) {
	row := struct {
		Points      int64
		AmountCents int64
	}{}
	err = r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(points),0) AS points, COALESCE(SUM(amount_cents),0) AS amount_cents").
		Where("user_id = ?", userID).
		Scan(&row).Error
	return row.Points, row.AmountCents, err
}
