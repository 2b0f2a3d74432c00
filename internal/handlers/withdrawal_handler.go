package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/services/withdrawal"
)

// WithdrawalHandler handles payout account requests
type WithdrawalHandler struct {
	accounts *withdrawal.Service
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(accounts *withdrawal.Service) *WithdrawalHandler {
	return &WithdrawalHandler{accounts: accounts}
}

// List returns the user's payout accounts
func (h *WithdrawalHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	accounts, err := h.accounts.List(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// CreateAccountRequest represents the payout account form
type CreateAccountRequest struct {
	AccountType models.WithdrawalAccountType `json:"account_type" binding:"required"`
	Details     models.JSON                  `json:"details" binding:"required"`
}

// Create adds a payout account for a verified creator or guarantor
func (h *WithdrawalHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accounts.Create(user, req.AccountType, req.Details)
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, withdrawal.ErrInvalidAccountType), errors.Is(err, withdrawal.ErrMissingDetails):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// SetPrimary makes an account the primary payout destination
func (h *WithdrawalHandler) SetPrimary(c *gin.Context) {
	user := middleware.CurrentUser(c)
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	account, err := h.accounts.SetPrimary(user.ID, accountID)
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// Delete removes a payout account
func (h *WithdrawalHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	if err := h.accounts.Delete(user.ID, accountID); err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
