package router

import (
	"time"

	"taskpay/config"
	"taskpay/internal/handler"
	"taskpay/internal/middleware"
	"taskpay/internal/repository"
	"taskpay/internal/service"
	"taskpay/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()
	runner := service.GormTxRunner{DB: db}

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, hub)
	ledgerSvc := service.NewLedgerService(runner, ledgerRepo, txRepo)
	referralSvc := service.NewReferralService(&cfg.Referral, runner, ledgerSvc, referralRepo, userRepo, notifSvc)
	withdrawalSvc := service.NewWithdrawalService(&cfg.Withdrawal, runner, ledgerSvc, withdrawalRepo, userRepo, packageRepo, notifSvc)
	rewardSvc := service.NewRewardService(ledgerSvc, referralSvc, notifSvc)
	authSvc := service.NewAuthService(cfg, userRepo, ledgerRepo, referralSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(ledgerRepo, txRepo, ledgerSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(&cfg.Withdrawal, withdrawalSvc, withdrawalRepo)
	adminWithdrawalHandler := handler.NewAdminWithdrawalHandler(withdrawalSvc, withdrawalRepo)
	referralHandler := handler.NewReferralHandler(&cfg.Referral, referralRepo, userRepo)
	adminHandler := handler.NewAdminHandler(referralRepo, userRepo, rewardSvc, cfg.Referral.MaxLevels)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		me := api.Group("")
		me.Use(authMw)
		{
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/wallet/transactions", walletHandler.GetTransactions)

			me.POST("/withdrawals", withdrawalHandler.Create)
			me.GET("/withdrawals", withdrawalHandler.List)
			me.GET("/withdrawals/quote", withdrawalHandler.Quote)
			me.POST("/withdrawals/:id/cancel", withdrawalHandler.Cancel)

			me.GET("/referrals", referralHandler.Dashboard)
			me.GET("/referrals/earnings", referralHandler.Earnings)

			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/withdrawals", adminWithdrawalHandler.List)
			admin.PATCH("/withdrawals/:id", adminWithdrawalHandler.Resolve)
			admin.GET("/referral-levels", adminHandler.ListReferralLevels)
			admin.PUT("/referral-levels/:level", adminHandler.UpsertReferralLevel)
			admin.POST("/rewards", adminHandler.GrantReward)
			admin.PATCH("/users/:id/kyc", adminHandler.UpdateKyc)
		}
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationWS(&cfg.JWT, hub))

	return r
}
