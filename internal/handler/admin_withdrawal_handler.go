package handler

import (
	"net/http"
	"strconv"

	"taskpay/internal/domain"
	"taskpay/internal/repository"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminWithdrawalHandler struct {
	withdrawalSvc  *service.WithdrawalService
	withdrawalRepo *repository.WithdrawalRepository
}

func NewAdminWithdrawalHandler(withdrawalSvc *service.WithdrawalService, withdrawalRepo *repository.WithdrawalRepository) *AdminWithdrawalHandler {
	return &AdminWithdrawalHandler{withdrawalSvc: withdrawalSvc, withdrawalRepo: withdrawalRepo}
}

// List handles GET /admin/withdrawals: the resolution queue, oldest first.
func (h *AdminWithdrawalHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", domain.WithdrawalPending)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.withdrawalRepo.ListByStatus(status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list, "count": len(list)})
}

// Resolve handles PATCH /admin/withdrawals/:id with an approve, reject, or
// process action. Invalid transitions come back as 409.
func (h *AdminWithdrawalHandler) Resolve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req struct {
		Action          string `json:"action" binding:"required"`
		TransactionID   string `json:"transaction_id"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Action {
	case "approve":
		w, err := h.withdrawalSvc.Approve(uint(id), req.TransactionID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawal": w})
	case "reject":
		w, err := h.withdrawalSvc.Reject(uint(id), req.RejectionReason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawal": w})
	case "process":
		w, err := h.withdrawalSvc.MarkProcessing(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"withdrawal": w})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve, reject or process"})
	}
}
