package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/policy"
	"github.com/causafund/backend/internal/utils"
)

// AccessHandler resolves navigation access decisions for the frontend.
// The frontend asks before rendering a gated page and follows the
// redirect target verbatim.
type AccessHandler struct {
	db *gorm.DB
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(db *gorm.DB) *AccessHandler {
	return &AccessHandler{db: db}
}

// Check evaluates the navigation policy for the wildcard path. An invalid
// or expired token evaluates as anonymous rather than erroring.
func (h *AccessHandler) Check(c *gin.Context) {
	decision := policy.Evaluate(c.Param("path"), h.session(c))

	c.JSON(http.StatusOK, gin.H{
		"allow":        decision.Allow,
		"redirect_url": decision.RedirectURL,
	})
}

// session builds a policy session from the bearer token, loading role and
// KYC status from the database so recent changes gate immediately
func (h *AccessHandler) session(c *gin.Context) *policy.Session {
	bearerToken := c.GetHeader("Authorization")
	if bearerToken == "" {
		return nil
	}

	tokenString := bearerToken
	if len(bearerToken) > 7 && bearerToken[:7] == "Bearer " {
		tokenString = bearerToken[7:]
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return nil
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil
	}

	return &policy.Session{
		UserID:    user.ID.String(),
		Role:      user.Role,
		KYCStatus: user.KYCStatus,
	}
}
