package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/services/donation"
	"github.com/causafund/backend/internal/services/email"
	"github.com/causafund/backend/internal/utils"
)

// AdminHandler handles the admin dashboard and manual payment review
type AdminHandler struct {
	db        *gorm.DB
	donations *donation.Service
	mailer    *email.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, donations *donation.Service, mailer *email.Service) *AdminHandler {
	return &AdminHandler{db: db, donations: donations, mailer: mailer}
}

// Dashboard returns the review queue counters for the admin landing page
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var pendingCampaigns, pendingKYC, pendingManualPayments, activeCampaigns int64

	h.db.Model(&models.Campaign{}).
		Where("status = ?", models.CampaignStatusPendingReview).
		Count(&pendingCampaigns)
	h.db.Model(&models.User{}).
		Where("kyc_status = ? AND kyc_document_url IS NOT NULL", models.KYCStatusPending).
		Count(&pendingKYC)
	h.db.Model(&models.ManualPayment{}).
		Where("status = ?", models.ManualPaymentPendingApproval).
		Count(&pendingManualPayments)
	h.db.Model(&models.Campaign{}).
		Where("status = ?", models.CampaignStatusActive).
		Count(&activeCampaigns)

	c.JSON(http.StatusOK, gin.H{
		"pending_campaigns":       pendingCampaigns,
		"pending_verifications":   pendingKYC,
		"pending_manual_payments": pendingManualPayments,
		"active_campaigns":        activeCampaigns,
	})
}

// ListManualPayments returns manual payments awaiting review
func (h *AdminHandler) ListManualPayments(c *gin.Context) {
	page, pageSize := pagination(c)

	payments, total, err := h.donations.ListPendingManualPayments(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list manual payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"manual_payments": payments,
		"total":           total,
		"page":            page,
		"page_size":       pageSize,
	})
}

// ManualReviewRequest represents a manual payment decision. The TOTP code
// is required once the reviewing admin has 2FA enabled: approvals move
// money onto campaign totals.
type ManualReviewRequest struct {
	Note     string `json:"note"`
	TOTPCode string `json:"totp_code"`
}

// verifyReviewer enforces the 2FA requirement for money-moving decisions
func verifyReviewer(c *gin.Context, admin *models.User, totpCode string) bool {
	if !admin.TwoFactorEnabled {
		return true
	}
	if totpCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA code required", "require_2fa": true})
		return false
	}
	if admin.TOTPSecret == nil || !utils.ValidateTOTPCode(*admin.TOTPSecret, totpCode) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
		return false
	}
	return true
}

// ApproveManualPayment settles a manual payment, crediting the campaign
func (h *AdminHandler) ApproveManualPayment(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	manualID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manual payment ID"})
		return
	}

	var req ManualReviewRequest
	_ = c.ShouldBindJSON(&req)

	if !verifyReviewer(c, admin, req.TOTPCode) {
		return
	}

	approved, err := h.donations.ApproveManualPayment(manualID, admin.ID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, donation.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Manual payment not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve manual payment"})
		}
		return
	}

	h.notifyDonor(approved, true, req.Note)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Manual payment approved",
		"manual_payment": approved,
	})
}

// notifyDonor emails the donor about the review outcome when the donation
// carries a contact address. Sending is best effort and never blocks the
// review response.
func (h *AdminHandler) notifyDonor(payment *models.ManualPayment, approved bool, note string) {
	var paid models.Donation
	if err := h.db.First(&paid, "id = ?", payment.DonationID).Error; err != nil {
		return
	}
	if paid.DonorEmail == nil {
		return
	}

	var funded models.Campaign
	if err := h.db.First(&funded, "id = ?", paid.CampaignID).Error; err != nil {
		return
	}

	if err := h.mailer.SendManualPaymentDecision(*paid.DonorEmail, funded.Title, paid.AmountUSD, approved, note); err != nil {
		log.Printf("Failed to send manual payment decision email to %s: %v", *paid.DonorEmail, err)
	}
}

// RejectManualPayment rejects a manual payment without crediting anything
func (h *AdminHandler) RejectManualPayment(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	manualID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manual payment ID"})
		return
	}

	var req ManualReviewRequest
	_ = c.ShouldBindJSON(&req)

	if !verifyReviewer(c, admin, req.TOTPCode) {
		return
	}

	rejected, err := h.donations.RejectManualPayment(manualID, admin.ID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, donation.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Manual payment not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject manual payment"})
		}
		return
	}

	h.notifyDonor(rejected, false, req.Note)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Manual payment rejected",
		"manual_payment": rejected,
	})
}

// SetupTOTP generates a new TOTP secret for the admin. The secret only
// takes effect after EnableTOTP confirms a valid code.
func (h *AdminHandler) SetupTOTP(c *gin.Context) {
	admin := middleware.CurrentUser(c)

	key, err := utils.GenerateTOTPKey(admin.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate 2FA secret"})
		return
	}

	if err := h.db.Model(admin).Updates(map[string]interface{}{
		"totp_secret":        key.Secret,
		"two_factor_enabled": false,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store 2FA secret"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":      key.Secret,
		"otpauth_url": key.URL,
	})
}

// EnableTOTP confirms the pending secret with a live code and turns 2FA on
func (h *AdminHandler) EnableTOTP(c *gin.Context) {
	admin := middleware.CurrentUser(c)

	var req struct {
		TOTPCode string `json:"totp_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if admin.TOTPSecret == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA setup has not been started"})
		return
	}
	if !utils.ValidateTOTPCode(*admin.TOTPSecret, req.TOTPCode) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
		return
	}

	if err := h.db.Model(admin).Update("two_factor_enabled", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "2FA enabled"})
}
