package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"taskpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func (r *ReferralRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// generateReferralCode returns an 8-character hex invite code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreateCode returns the existing referral code for a user, or creates a new unique one.
func (r *ReferralRepository) GetOrCreateCode(userID uint) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	if err := r.db.Where("user_id = ?", userID).First(&rc).Error; err == nil {
		return &rc, nil
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		rc = models.ReferralCode{UserID: userID, Code: code, IsActive: true}
		if err := r.db.Create(&rc).Error; err == nil {
			return &rc, nil
		}
		// Collision: retry with new code
	}
	return nil, fmt.Errorf("failed to generate a unique referral code after retries")
}

// GetCodeOwner returns the active ReferralCode record matching the given code string.
func (r *ReferralRepository) GetCodeOwner(code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := r.db.Where("code = ? AND is_active = ?", code, true).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// Levels returns all configured commission slots ordered by level.
func (r *ReferralRepository) Levels() ([]models.ReferralLevel, error) {
	var levels []models.ReferralLevel
	err := r.db.Order("level ASC").Find(&levels).Error
	return levels, err
}

// UpsertLevel creates or replaces the configuration for one of the 10 slots.
func (r *ReferralRepository) UpsertLevel(l *models.ReferralLevel) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "level"}},
		DoUpdates: clause.AssignmentColumns([]string{"commission_type", "commission_value", "is_active", "updated_at"}),
	}).Create(l).Error
}

// EarningExists reports whether the fan-out already credited this level for
// the given source event.
func (r *ReferralRepository) EarningExists(sourceEventID string, level int) (bool, error) {
	var count int64
	err := r.db.Model(&models.ReferralEarning{}).
		Where("source_event_id = ? AND level = ?", sourceEventID, level).
		Count(&count).Error
	return count > 0, err
}

// CreateEarning inserts one fan-out credit row. The composite unique index on
// (source_event_id, user_id, level) backstops the check-then-insert; a
// duplicate insert surfaces gorm.ErrDuplicatedKey.
func (r *ReferralRepository) CreateEarning(tx *gorm.DB, e *models.ReferralEarning) error {
	return r.conn(tx).Create(e).Error
}

func (r *ReferralRepository) ListEarningsByUser(userID uint, limit, offset int) ([]models.ReferralEarning, error) {
	var list []models.ReferralEarning
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// SumEarnings totals a user's commission points, optionally since a cutoff.
func (r *ReferralRepository) SumEarnings(userID uint, since *time.Time) (int64, error) {
	q := r.db.Model(&models.ReferralEarning{}).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var total int64
	err := q.Select("COALESCE(SUM(points),0)").Scan(&total).Error
	return total, err
}
