package database

import (
	"log"

	"taskpay/config"
	"taskpay/internal/domain"
	"taskpay/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		// The referral fan-out relies on gorm.ErrDuplicatedKey from the
		// unique (source_event_id, user_id, level) index.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.LedgerAccount{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.ReferralCode{},
		&models.ReferralLevel{},
		&models.ReferralEarning{},
		&models.Notification{},
	)
}

// SeedAdmin creates the bootstrap admin account if none exists.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-admin"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] admin password hash: %v", err)
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@taskpay.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		KycStatus:    domain.KycApproved,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[seed] admin: %v", err)
		return
	}
	db.Create(&models.LedgerAccount{UserID: admin.ID})
	log.Printf("[seed] created admin user %s", admin.Email)
}

// SeedPackages inserts the default tiers if the table is empty.
func SeedPackages(db *gorm.DB) {
	var count int64
	db.Model(&models.Package{}).Count(&count)
	if count > 0 {
		return
	}
	defaults := []models.Package{
		{Name: "Free", MinWithdrawalCents: 10000, FeeDiscount: 0},
		{Name: "Silver", MinWithdrawalCents: 5000, FeeDiscount: 0.25},
		{Name: "Gold", MinWithdrawalCents: 2000, FeeDiscount: 0.5},
	}
	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			log.Printf("[seed] package %s: %v", defaults[i].Name, err)
		}
	}
}

// SeedReferralLevels fills the 10 commission slots on first boot: three
// active percentage levels, the rest inactive until an admin enables them.
func SeedReferralLevels(db *gorm.DB, maxLevels int) {
	var count int64
	db.Model(&models.ReferralLevel{}).Count(&count)
	if count > 0 {
		return
	}
	defaults := map[int]models.ReferralLevel{
		1: {CommissionType: domain.CommissionPercentage, CommissionValue: 10, IsActive: true},
		2: {CommissionType: domain.CommissionPercentage, CommissionValue: 5, IsActive: true},
		3: {CommissionType: domain.CommissionPercentage, CommissionValue: 2, IsActive: true},
	}
	for level := 1; level <= maxLevels; level++ {
		l := models.ReferralLevel{Level: level, CommissionType: domain.CommissionPercentage}
		if d, ok := defaults[level]; ok {
			l.CommissionType = d.CommissionType
			l.CommissionValue = d.CommissionValue
			l.IsActive = d.IsActive
		}
		if err := db.Create(&l).Error; err != nil {
			log.Printf("[seed] referral level %d: %v", level, err)
		}
	}
}
