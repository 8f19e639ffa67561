package service

import (
	"errors"
	"log"

	"taskpay/config"
	"taskpay/internal/auth"
	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
)

type AuthService struct {
	cfg       *config.Config
	userRepo  *repository.UserRepository
	accounts  AccountStore
	referrals *ReferralService
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, accounts AccountStore, referrals *ReferralService) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, accounts: accounts, referrals: referrals}
}

// Register creates the user, opens their zero-balance ledger account, and
// claims the optional referral code. The referral link is assigned here and
// never again, which is what keeps the referral graph acyclic.
func (s *AuthService) Register(email, username, password, referralCode string) (*models.User, string, string, error) {
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	_, err = s.userRepo.GetByUsername(username)
	if err == nil {
		return nil, "", "", ErrUsernameExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		KycStatus:    domain.KycPending,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	if _, err := s.accounts.GetOrCreate(u.ID); err != nil {
		return nil, "", "", err
	}
	if referralCode != "" {
		// A bad code doesn't block registration.
		if err := s.referrals.ClaimCode(referralCode, u.ID); err != nil {
			log.Printf("[auth] referral claim for user %d failed: %v", u.ID, err)
		}
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Role)
}
