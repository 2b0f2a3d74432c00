package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/services/email"
	"github.com/causafund/backend/internal/services/kyc"
)

// KYCHandler handles identity verification requests
type KYCHandler struct {
	service    *kyc.Service
	mailer     *email.Service
	uploadsDir string
}

// NewKYCHandler creates a new KYC handler
func NewKYCHandler(service *kyc.Service, mailer *email.Service, uploadsDir string) *KYCHandler {
	return &KYCHandler{service: service, mailer: mailer, uploadsDir: uploadsDir}
}

// SubmitRequest represents a verification document submission
type SubmitRequest struct {
	DocumentURL  string                 `json:"document_url" binding:"required"`
	DocumentType models.KYCDocumentType `json:"document_type" binding:"required"`
}

// Submit records the user's identity document for review
func (h *KYCHandler) Submit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Submit(user.ID, req.DocumentURL, req.DocumentType)
	if err != nil {
		submitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Verification submitted",
		"kyc_status": updated.KYCStatus,
	})
}

// submitError maps a submission failure to its response
func submitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, kyc.ErrAlreadyVerified), errors.Is(err, kyc.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, kyc.ErrInvalidDocumentType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit verification"})
	}
}

// UploadDocument receives the identity document as a multipart upload,
// stores it under the uploads directory and submits it for review
func (h *KYCHandler) UploadDocument(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	documentType := models.KYCDocumentType(c.PostForm("document_type"))
	if !models.ValidKYCDocumentType(documentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type"})
		return
	}

	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document file is required"})
		return
	}

	userDir := filepath.Join(h.uploadsDir, user.ID.String())
	if err := os.MkdirAll(userDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return
	}

	storedPath := filepath.Join(userDir, fmt.Sprintf("document_%s%s", uuid.New().String(), filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
		return
	}

	updated, err := h.service.Submit(user.ID, storedPath, documentType)
	if err != nil {
		submitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Verification submitted",
		"kyc_status":   updated.KYCStatus,
		"document_url": storedPath,
	})
}

// Status returns the user's verification state
func (h *KYCHandler) Status(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"kyc_status":          user.KYCStatus,
		"kyc_document_type":   user.KYCDocumentType,
		"kyc_rejected_reason": user.KYCRejectedReason,
	})
}

// ListPending returns verification submissions awaiting review (admin)
func (h *KYCHandler) ListPending(c *gin.Context) {
	page, pageSize := pagination(c)

	users, total, err := h.service.ListPending(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list verifications"})
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, gin.H{
			"id":                users[i].ID,
			"email":             users[i].Email,
			"full_name":         users[i].FullName,
			"role":              users[i].Role,
			"kyc_document_url":  users[i].KYCDocumentURL,
			"kyc_document_type": users[i].KYCDocumentType,
			"submitted_at":      users[i].UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"verifications": items,
		"total":         total,
		"page":          page,
		"page_size":     pageSize,
	})
}

// ReviewRequest represents an admin verification decision
type ReviewRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// Approve marks a user's identity as verified (admin)
func (h *KYCHandler) Approve(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	admin := middleware.CurrentUser(c)

	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

	updated, err := h.service.Approve(userID, admin.ID, req.Notes)
	if err != nil {
		if errors.Is(err, kyc.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve verification"})
		return
	}

	if err := h.mailer.SendKYCDecision(updated.Email, updated.FullName, true, ""); err != nil {
		log.Printf("Failed to send KYC approval email to %s: %v", updated.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Verification approved",
		"user_id":    updated.ID,
		"kyc_status": updated.KYCStatus,
	})
}

// Reject marks a user's submission as rejected with a reason (admin)
func (h *KYCHandler) Reject(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	admin := middleware.CurrentUser(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Reject(userID, admin.ID, req.Reason, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, kyc.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, kyc.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject verification"})
		}
		return
	}

	if err := h.mailer.SendKYCDecision(updated.Email, updated.FullName, false, req.Reason); err != nil {
		log.Printf("Failed to send KYC rejection email to %s: %v", updated.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Verification rejected",
		"user_id":    updated.ID,
		"kyc_status": updated.KYCStatus,
	})
}

// History returns the audit trail of a user's verification decisions (admin)
func (h *KYCHandler) History(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	history, err := h.service.History(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
