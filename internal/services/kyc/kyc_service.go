package kyc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/models"
)

var (
	// ErrAlreadyVerified is returned when a verified user submits a
	// document. Verified is terminal: resubmission is disabled by policy.
	ErrAlreadyVerified = errors.New("identity is already verified")
	// ErrAlreadySubmitted is returned when a submission is still under review
	ErrAlreadySubmitted = errors.New("verification is already pending review")
	// ErrInvalidDocumentType is returned for unknown document types
	ErrInvalidDocumentType = errors.New("invalid document type")
	// ErrReasonRequired is returned when a rejection is missing its reason
	ErrReasonRequired = errors.New("rejection reason is required")
	// ErrInvalidTransition is returned for a decision the KYC lifecycle
	// does not allow
	ErrInvalidTransition = errors.New("invalid KYC status transition")
)

// Service handles identity verification submissions and admin decisions
type Service struct {
	db *gorm.DB
}

// NewService creates a new KYC service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Submit records a user's identity document. A rejected user may resubmit,
// which clears the rejection reason and returns the status to pending.
func (s *Service) Submit(userID uuid.UUID, documentURL string, documentType models.KYCDocumentType) (*models.User, error) {
	if !models.ValidKYCDocumentType(documentType) {
		return nil, ErrInvalidDocumentType
	}
	if strings.TrimSpace(documentURL) == "" {
		return nil, errors.New("document is required")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	switch user.KYCStatus {
	case models.KYCStatusVerified:
		return nil, ErrAlreadyVerified
	case models.KYCStatusPending:
		// A pending user with no document yet is a fresh signup; one
		// with a document already has a submission in the queue.
		if user.KYCDocumentURL != nil {
			return nil, ErrAlreadySubmitted
		}
	}

	previous := user.KYCStatus

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"kyc_document_url":    documentURL,
			"kyc_document_type":   documentType,
			"kyc_status":          models.KYCStatusPending,
			"kyc_rejected_reason": nil,
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}

		if previous != models.KYCStatusPending {
			history := models.KYCStatusHistory{
				UserID:         user.ID,
				PreviousStatus: previous,
				NewStatus:      models.KYCStatusPending,
				ChangedBy:      user.ID,
			}
			if err := tx.Create(&history).Error; err != nil {
				return fmt.Errorf("error recording KYC history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// decide applies an admin KYC decision to a user
func (s *Service) decide(userID, adminID uuid.UUID, next models.KYCStatus, reason, notes string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !user.KYCStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, user.KYCStatus, next)
	}

	previous := user.KYCStatus

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"kyc_status": next}
		if next == models.KYCStatusRejected {
			updates["kyc_rejected_reason"] = reason
		} else {
			updates["kyc_rejected_reason"] = nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}

		history := models.KYCStatusHistory{
			UserID:         user.ID,
			PreviousStatus: previous,
			NewStatus:      next,
			ChangedBy:      adminID,
		}
		if notes != "" {
			history.Notes = &notes
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("error recording KYC history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Approve marks a user's identity as verified, unlocking campaign creation
// and withdrawal accounts for creators and guarantors
func (s *Service) Approve(userID, adminID uuid.UUID, notes string) (*models.User, error) {
	return s.decide(userID, adminID, models.KYCStatusVerified, "", notes)
}

// Reject marks a user's submission as rejected with a reason the user sees
func (s *Service) Reject(userID, adminID uuid.UUID, reason, notes string) (*models.User, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	return s.decide(userID, adminID, models.KYCStatusRejected, reason, notes)
}

// ListPending returns users with a document awaiting review, oldest first
func (s *Service) ListPending(page, pageSize int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.User{}).
		Where("kyc_status = ? AND kyc_document_url IS NOT NULL", models.KYCStatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting pending verifications: %w", err)
	}

	var users []models.User
	offset := (page - 1) * pageSize
	if err := query.Order("updated_at asc").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding pending verifications: %w", err)
	}

	return users, total, nil
}

// History returns the audit trail of a user's KYC status changes
func (s *Service) History(userID uuid.UUID) ([]models.KYCStatusHistory, error) {
	var history []models.KYCStatusHistory
	if err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&history).Error; err != nil {
		return nil, fmt.Errorf("error finding KYC history: %w", err)
	}
	return history, nil
}
