package repository

import (
	"errors"

	"taskpay/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.Preload("Package").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ReferrerOf returns the ID of the user who referred userID, or (0, nil)
// when the user is a root of the referral tree.
func (r *UserRepository) ReferrerOf(userID uint) (uint, error) {
	var u models.User
	if err := r.db.Select("id", "referred_by_id").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if u.ReferredByID == nil {
		return 0, nil
	}
	return *u.ReferredByID, nil
}

// ListIDsReferredBy returns the IDs of users directly referred by any of the
// given users. Used to count descendants level by level.
func (r *UserRepository) ListIDsReferredBy(referrerIDs []uint) ([]uint, error) {
	if len(referrerIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.Model(&models.User{}).
		Where("referred_by_id IN ?", referrerIDs).
		Pluck("id", &ids).Error
	return ids, err
}

// SetReferrer records the referral back-reference. Only ever called for a
// freshly registered user.
func (r *UserRepository) SetReferrer(userID, referrerID uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("referred_by_id", referrerID).Error
}

func (r *UserRepository) UpdateKycStatus(userID uint, status string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("kyc_status", status).Error
}
