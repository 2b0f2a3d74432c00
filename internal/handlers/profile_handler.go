package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
)

// ProfileHandler handles profile requests
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's profile, including KYC
// status and rejection reason when present
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                  user.ID,
		"email":               user.Email,
		"full_name":           user.FullName,
		"avatar_url":          user.AvatarURL,
		"role":                user.Role,
		"kyc_status":          user.KYCStatus,
		"kyc_document_type":   user.KYCDocumentType,
		"kyc_rejected_reason": user.KYCRejectedReason,
		"two_factor_enabled":  user.TwoFactorEnabled,
		"created_at":          user.CreatedAt,
	})
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfile updates the user's display fields
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// BecomeCreatorRequest selects the fundraising role to adopt
type BecomeCreatorRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// BecomeCreator switches a donor to the creator or guarantor role. The
// role change alone grants nothing: campaign creation and payout accounts
// stay locked until KYC verification.
func (h *ProfileHandler) BecomeCreator(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req BecomeCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != models.RoleCreator && req.Role != models.RoleGuarantor {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be creator or guarantor"})
		return
	}
	if user.Role == models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admins cannot change role"})
		return
	}

	if err := h.db.Model(user).Update("role", req.Role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Role updated",
		"role":       req.Role,
		"kyc_status": user.KYCStatus,
	})
}
