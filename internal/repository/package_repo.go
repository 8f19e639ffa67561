package repository

import (
	"errors"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) GetByID(id uint) (*models.Package, error) {
	var p models.Package
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PackageRepository) List() ([]models.Package, error) {
	var list []models.Package
	err := r.db.Order("min_withdrawal_cents DESC").Find(&list).Error
	return list, err
}
