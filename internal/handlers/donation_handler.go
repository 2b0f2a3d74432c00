package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/services/donation"
)

// DonationHandler handles donation checkout requests
type DonationHandler struct {
	donations *donation.Service
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donations *donation.Service) *DonationHandler {
	return &DonationHandler{donations: donations}
}

// ManualPaymentData carries the donor-reported proof for manual methods
type ManualPaymentData struct {
	TransactionReference string `json:"transaction_reference"`
	ProofNote            string `json:"proof_note"`
}

// CreateDonationRequest represents the donation checkout form
type CreateDonationRequest struct {
	CampaignID        uuid.UUID            `json:"campaign_id" binding:"required"`
	AmountUSD         float64              `json:"amount_usd" binding:"required"`
	PaymentMethod     models.PaymentMethod `json:"payment_method" binding:"required"`
	IsAnonymous       bool                 `json:"is_anonymous"`
	DonorEmail        string               `json:"donor_email"`
	ManualPaymentData *ManualPaymentData   `json:"manual_payment_data"`
}

// Create records a donation. Authentication is optional: logged-in donors
// get the donation attached to their history unless they donate
// anonymously.
func (h *DonationHandler) Create(c *gin.Context) {
	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := donation.CreateInput{
		CampaignID:    req.CampaignID,
		AmountUSD:     req.AmountUSD,
		PaymentMethod: req.PaymentMethod,
		Anonymous:     req.IsAnonymous,
		DonorEmail:    req.DonorEmail,
	}

	if user := middleware.CurrentUser(c); user != nil {
		input.DonorID = &user.ID
		if input.DonorEmail == "" {
			input.DonorEmail = user.Email
		}
	}

	if req.ManualPaymentData != nil {
		input.ManualReference = req.ManualPaymentData.TransactionReference
		input.ManualProofNote = req.ManualPaymentData.ProofNote
	}

	created, err := h.donations.Create(input)
	if err != nil {
		switch {
		case errors.Is(err, donation.ErrCampaignNotAcceptingDonations):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		case errors.Is(err, donation.ErrInvalidAmount),
			errors.Is(err, donation.ErrInvalidPaymentMethod),
			errors.Is(err, donation.ErrReferenceRequired),
			errors.Is(err, donation.ErrInvalidCryptoReference):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create donation"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Donation recorded",
		"donation": created,
	})
}

// Mine returns the authenticated donor's donation history. Anonymous
// donations never appear: they carry no donor ID.
func (h *DonationHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	donations, err := h.donations.ListByDonor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list donations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": donations})
}
