package handler

import (
	"net/http"
	"strconv"

	"taskpay/internal/domain"
	"taskpay/internal/models"
	"taskpay/internal/repository"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler covers referral configuration, reward grants, and KYC
// decisions.
type AdminHandler struct {
	referralRepo *repository.ReferralRepository
	userRepo     *repository.UserRepository
	rewardSvc    *service.RewardService
	maxLevels    int
}

func NewAdminHandler(referralRepo *repository.ReferralRepository, userRepo *repository.UserRepository, rewardSvc *service.RewardService, maxLevels int) *AdminHandler {
	return &AdminHandler{referralRepo: referralRepo, userRepo: userRepo, rewardSvc: rewardSvc, maxLevels: maxLevels}
}

// ListReferralLevels handles GET /admin/referral-levels.
func (h *AdminHandler) ListReferralLevels(c *gin.Context) {
	levels, err := h.referralRepo.Levels()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

// UpsertReferralLevel handles PUT /admin/referral-levels/:level for one of
// the 10 fixed slots.
func (h *AdminHandler) UpsertReferralLevel(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 1 || level > h.maxLevels {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level must be between 1 and " + strconv.Itoa(h.maxLevels)})
		return
	}
	var req struct {
		CommissionType  string  `json:"commission_type" binding:"required"`
		CommissionValue float64 `json:"commission_value"`
		IsActive        bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CommissionType != domain.CommissionPercentage && req.CommissionType != domain.CommissionFlat {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commission_type must be PERCENTAGE or FLAT"})
		return
	}
	if req.CommissionValue < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commission_value cannot be negative"})
		return
	}
	l := &models.ReferralLevel{
		Level:           level,
		CommissionType:  req.CommissionType,
		CommissionValue: req.CommissionValue,
		IsActive:        req.IsActive,
	}
	if err := h.referralRepo.UpsertLevel(l); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": l})
}

// GrantReward handles POST /admin/rewards: credits a task reward, which also
// triggers the referral commission fan-out.
func (h *AdminHandler) GrantReward(c *gin.Context) {
	var req struct {
		UserID      uint   `json:"user_id" binding:"required"`
		Points      int64  `json:"points"`
		AmountCents int64  `json:"amount_cents"`
		Reference   string `json:"reference"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.rewardSvc.GrantTaskReward(req.UserID, req.Points, req.AmountCents, req.Reference, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": t})
}

// UpdateKyc handles PATCH /admin/users/:id/kyc.
func (h *AdminHandler) UpdateKyc(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Status {
	case domain.KycPending, domain.KycApproved, domain.KycRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be PENDING, APPROVED or REJECTED"})
		return
	}
	if err := h.userRepo.UpdateKycStatus(uint(id), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "kyc_status": req.Status})
}
