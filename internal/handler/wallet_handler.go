package handler

import (
	"net/http"
	"strconv"

	"taskpay/internal/middleware"
	"taskpay/internal/repository"
	"taskpay/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	ledgerRepo *repository.LedgerRepository
	txRepo     *repository.TransactionRepository
	ledgerSvc  *service.LedgerService
}

func NewWalletHandler(ledgerRepo *repository.LedgerRepository, txRepo *repository.TransactionRepository, ledgerSvc *service.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerRepo: ledgerRepo, txRepo: txRepo, ledgerSvc: ledgerSvc}
}

// GetBalance returns the authenticated user's ledger account.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	acc, err := h.ledgerRepo.GetOrCreate(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	available, err := h.ledgerSvc.AvailableBalance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"points_balance":          acc.PointsBalance,
		"available_points":        available,
		"cash_balance_cents":      acc.CashBalanceCents,
		"total_earnings_cents":    acc.TotalEarningsCents,
		"total_withdrawals_cents": acc.TotalWithdrawalsCents,
		"currency":                acc.Currency,
	})
}

// GetTransactions returns the authenticated user's balance history.
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.txRepo.ListByUser(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list, "count": len(list)})
}
