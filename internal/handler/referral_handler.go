package handler

import (
	"net/http"
	"strconv"
	"time"

	"taskpay/config"
	"taskpay/internal/middleware"
	"taskpay/internal/repository"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	cfg          *config.ReferralConfig
	referralRepo *repository.ReferralRepository
	userRepo     *repository.UserRepository
}

func NewReferralHandler(cfg *config.ReferralConfig, referralRepo *repository.ReferralRepository, userRepo *repository.UserRepository) *ReferralHandler {
	return &ReferralHandler{cfg: cfg, referralRepo: referralRepo, userRepo: userRepo}
}

// Dashboard handles GET /referrals: the user's invite code and link, the
// commission schedule, descendant counts per level, lifetime and
// current-month earnings, and recent commission activity.
func (h *ReferralHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	rc, err := h.referralRepo.GetOrCreateCode(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	levels, err := h.referralRepo.Levels()
	if err != nil {
		respondError(c, err)
		return
	}
	rates := make([]gin.H, 0, len(levels))
	for _, l := range levels {
		rates = append(rates, gin.H{
			"level":            l.Level,
			"commission_type":  l.CommissionType,
			"commission_value": l.CommissionValue,
			"is_active":        l.IsActive,
		})
	}

	// Descendant counts, level by level down the tree.
	counts := make([]gin.H, 0, h.cfg.MaxLevels)
	frontier := []uint{userID}
	for level := 1; level <= h.cfg.MaxLevels && len(frontier) > 0; level++ {
		frontier, err = h.userRepo.ListIDsReferredBy(frontier)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(frontier) == 0 {
			break
		}
		counts = append(counts, gin.H{"level": level, "count": len(frontier)})
	}

	lifetime, err := h.referralRepo.SumEarnings(userID, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := h.referralRepo.SumEarnings(userID, &monthStart)
	if err != nil {
		respondError(c, err)
		return
	}
	recent, err := h.referralRepo.ListEarningsByUser(userID, 20, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referral_code":   rc.Code,
		"referral_link":   "/register?ref=" + rc.Code,
		"levels":          rates,
		"referral_counts": counts,
		"earnings": gin.H{
			"lifetime_points": lifetime,
			"monthly_points":  monthly,
		},
		"recent_earnings": recent,
	})
}

// Earnings handles GET /referrals/earnings: paginated commission history.
func (h *ReferralHandler) Earnings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.referralRepo.ListEarningsByUser(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": list, "count": len(list)})
}
