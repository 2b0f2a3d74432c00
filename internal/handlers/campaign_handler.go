package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/services/campaign"
	"github.com/causafund/backend/internal/services/donation"
)

// CampaignHandler handles campaign requests
type CampaignHandler struct {
	campaigns *campaign.Service
	donations *donation.Service
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaigns *campaign.Service, donations *donation.Service) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, donations: donations}
}

// List returns active campaigns for the public browse page. Status is
// forced to active here; the admin listing uses its own endpoint.
func (h *CampaignHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	campaigns, total, err := h.campaigns.List(campaign.ListFilter{
		Status:   models.CampaignStatusActive,
		Category: c.Query("category"),
		Urgency:  models.UrgencyLevel(c.Query("urgency")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetBySlug returns a single campaign by its slug
func (h *CampaignHandler) GetBySlug(c *gin.Context) {
	found, err := h.campaigns.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load campaign"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": found})
}

// findBySlug resolves the slug route param to a campaign, writing the
// error response on failure
func (h *CampaignHandler) findBySlug(c *gin.Context) (*models.Campaign, bool) {
	found, err := h.campaigns.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load campaign"})
		}
		return nil, false
	}
	return found, true
}

// ListDonations returns a campaign's donations. Anonymous donations carry
// no donor identity in storage, so nothing needs masking here.
func (h *CampaignHandler) ListDonations(c *gin.Context) {
	found, ok := h.findBySlug(c)
	if !ok {
		return
	}

	donations, err := h.donations.ListByCampaign(found.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list donations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": donations})
}

// ListUpdates returns a campaign's progress updates
func (h *CampaignHandler) ListUpdates(c *gin.Context) {
	found, ok := h.findBySlug(c)
	if !ok {
		return
	}

	updates, err := h.campaigns.ListUpdates(found.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list updates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// CreateRequest represents the campaign creation form
type CreateRequest struct {
	Title         string              `json:"title" binding:"required"`
	Category      string              `json:"category"`
	Story         string              `json:"story" binding:"required"`
	ImageURL      *string             `json:"image_url"`
	Location      *string             `json:"location"`
	GoalAmountUSD float64             `json:"goal_amount_usd" binding:"required"`
	UrgencyLevel  models.UrgencyLevel `json:"urgency_level"`
	Submit        bool                `json:"submit"`
}

// Create creates a campaign for the authenticated verified creator
func (h *CampaignHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.campaigns.Create(user, campaign.CreateInput{
		Title:         req.Title,
		Category:      req.Category,
		Story:         req.Story,
		ImageURL:      req.ImageURL,
		Location:      req.Location,
		GoalAmountUSD: req.GoalAmountUSD,
		UrgencyLevel:  req.UrgencyLevel,
		Submit:        req.Submit,
	})
	if err != nil {
		if errors.Is(err, campaign.ErrNotVerifiedCreator) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"campaign": created})
}

// Mine returns the authenticated creator's campaigns, all statuses
func (h *CampaignHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	campaigns, err := h.campaigns.ListByCreator(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// SubmitForReview moves the creator's draft into the review queue
func (h *CampaignHandler) SubmitForReview(c *gin.Context) {
	user := middleware.CurrentUser(c)
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	updated, err := h.campaigns.SubmitForReview(campaignID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, campaign.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit campaign"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": updated})
}

// CreateUpdateRequest represents a progress update post
type CreateUpdateRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// CreateUpdate posts a progress update on the creator's campaign
func (h *CampaignHandler) CreateUpdate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	var req CreateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := h.campaigns.CreateUpdate(campaignID, user.ID, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, campaign.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"update": update})
}

// AdminList returns campaigns filtered by status for moderation (admin)
func (h *CampaignHandler) AdminList(c *gin.Context) {
	page, pageSize := pagination(c)

	status := models.CampaignStatus(c.DefaultQuery("status", string(models.CampaignStatusPendingReview)))

	campaigns, total, err := h.campaigns.List(campaign.ListFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// adminTransition applies an admin lifecycle action and writes the response
func (h *CampaignHandler) adminTransition(c *gin.Context, action func(uuid.UUID) (*models.Campaign, error)) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	updated, err := action(campaignID)
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": updated})
}

// Approve activates a campaign under review (admin)
func (h *CampaignHandler) Approve(c *gin.Context) {
	h.adminTransition(c, h.campaigns.Approve)
}

// Reject returns a campaign under review to draft with a reason (admin)
func (h *CampaignHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		return
	}
	h.adminTransition(c, func(id uuid.UUID) (*models.Campaign, error) {
		return h.campaigns.Reject(id, req.Reason)
	})
}

// Pause pauses an active campaign (admin)
func (h *CampaignHandler) Pause(c *gin.Context) {
	h.adminTransition(c, h.campaigns.Pause)
}

// Resume reactivates a paused campaign (admin)
func (h *CampaignHandler) Resume(c *gin.Context) {
	h.adminTransition(c, h.campaigns.Resume)
}

// Close closes a campaign permanently (admin)
func (h *CampaignHandler) Close(c *gin.Context) {
	h.adminTransition(c, h.campaigns.Close)
}
