package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Withdrawal WithdrawalConfig
	Referral   ReferralConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// WithdrawalConfig holds withdrawal policy knobs. These are business policy,
// not architecture, so they live in config rather than constants.
type WithdrawalConfig struct {
	Currency          string
	PointsPerUnit     int64         // points exchanged per 1 currency unit
	KycThresholdCents int64         // requests above this require APPROVED KYC
	Cooldown          time.Duration // minimum gap between withdrawal requests
	ProcessingETA     string        // surfaced to users on request creation
}

type ReferralConfig struct {
	MaxLevels int // hard ceiling on commission fan-out depth
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8088"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "taskpay:taskpay@tcp(localhost:3306)/taskpay?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "taskpay",
		},
		Withdrawal: WithdrawalConfig{
			Currency:          "USD",
			PointsPerUnit:     1000,
			KycThresholdCents: envInt64("KYC_THRESHOLD_CENTS", 10000), // 100 currency units
			Cooldown:          time.Duration(envInt64("WITHDRAWAL_COOLDOWN_HOURS", 24)) * time.Hour,
			ProcessingETA:     "1-3 business days",
		},
		Referral: ReferralConfig{
			MaxLevels: 10,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
