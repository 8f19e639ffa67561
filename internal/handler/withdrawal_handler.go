package handler

import (
	"net/http"
	"strconv"

	"taskpay/config"
	"taskpay/internal/domain"
	"taskpay/internal/middleware"
	"taskpay/internal/models"
	"taskpay/internal/repository"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	cfg            *config.WithdrawalConfig
	withdrawalSvc  *service.WithdrawalService
	withdrawalRepo *repository.WithdrawalRepository
}

func NewWithdrawalHandler(cfg *config.WithdrawalConfig, withdrawalSvc *service.WithdrawalService, withdrawalRepo *repository.WithdrawalRepository) *WithdrawalHandler {
	return &WithdrawalHandler{cfg: cfg, withdrawalSvc: withdrawalSvc, withdrawalRepo: withdrawalRepo}
}

// Create handles POST /withdrawals: validates the request, freezes the fee,
// and holds the funds.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		AmountCents    int64                 `json:"amount_cents" binding:"required"`
		Method         string                `json:"method" binding:"required"`
		AccountDetails models.AccountDetails `json:"account_details" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.withdrawalSvc.Create(userID, req.AmountCents, req.Method, req.AccountDetails)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"withdrawal":                w,
		"fee_cents":                 w.FeeCents,
		"net_amount_cents":          w.NetAmountCents,
		"status":                    w.Status,
		"estimated_processing_time": h.cfg.ProcessingETA,
	})
}

// List handles GET /withdrawals: the user's paginated history plus per-status
// summary aggregates.
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.withdrawalRepo.ListByUser(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.withdrawalRepo.SummaryByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	summary := gin.H{}
	for _, r := range rows {
		summary[r.Status] = gin.H{"count": r.Count, "total_cents": r.TotalCents}
	}
	c.JSON(http.StatusOK, gin.H{
		"withdrawals": list,
		"count":       len(list),
		"summary":     summary,
	})
}

// Quote handles GET /withdrawals/quote: a dry-run fee computation.
func (h *WithdrawalHandler) Quote(c *gin.Context) {
	amountCents, err := strconv.ParseInt(c.Query("amount_cents"), 10, 64)
	if err != nil || amountCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents must be a positive integer"})
		return
	}
	method := c.Query("method")
	if !service.SupportedMethod(method) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported withdrawal method: " + method})
		return
	}
	quote, err := service.QuoteFee(method, amountCents, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"amount_cents":     amountCents,
		"fee_cents":        quote.FeeCents,
		"net_amount_cents": quote.NetAmountCents,
		"fee_percentage":   quote.EffectivePercentage,
		"hold_points":      service.HoldPoints(amountCents, h.cfg.PointsPerUnit),
	})
}

// Cancel handles POST /withdrawals/:id/cancel for a still-PENDING request.
func (h *WithdrawalHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	w, err := h.withdrawalSvc.Cancel(uint(id), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w, "status": domain.WithdrawalCancelled})
}
