package handler

import (
	"errors"
	"log"
	"net/http"

	"taskpay/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps the domain error taxonomy onto HTTP. Business-rule
// violations echo their message; unexpected failures are logged and replaced
// with a generic message.
func respondError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		kyc        *domain.KycRequiredError
		cooldown   *domain.CooldownError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &kyc):
		c.JSON(http.StatusBadRequest, gin.H{"error": kyc.Error(), "kyc_required": true})
	case errors.As(err, &cooldown):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             cooldown.Error(),
			"retry_after_hours": cooldown.Remaining.Hours(),
		})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
