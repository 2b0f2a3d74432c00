package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents a user's role on the platform
type Role string

const (
	RoleDonor     Role = "donor"
	RoleCreator   Role = "creator"
	RoleGuarantor Role = "guarantor"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleDonor, RoleCreator, RoleGuarantor, RoleAdmin:
		return true
	}
	return false
}

// KYCStatus represents the status of a user's identity verification
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
	KYCStatusRejected KYCStatus = "rejected"
)

// CanTransitionTo reports whether a KYC status transition is allowed.
// verified is terminal: once verified, a user cannot resubmit.
func (s KYCStatus) CanTransitionTo(next KYCStatus) bool {
	switch s {
	case KYCStatusPending:
		return next == KYCStatusVerified || next == KYCStatusRejected
	case KYCStatusRejected:
		return next == KYCStatusPending
	case KYCStatusVerified:
		return false
	}
	return false
}

// KYCDocumentType represents the type of identity document submitted
type KYCDocumentType string

const (
	KYCDocumentCedula   KYCDocumentType = "cedula"
	KYCDocumentPassport KYCDocumentType = "passport"
	KYCDocumentLicense  KYCDocumentType = "license"
)

// ValidKYCDocumentType reports whether t is a known document type
func ValidKYCDocumentType(t KYCDocumentType) bool {
	switch t {
	case KYCDocumentCedula, KYCDocumentPassport, KYCDocumentLicense:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Email             string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName          string           `gorm:"type:varchar(255)" json:"full_name"`
	AvatarURL         *string          `gorm:"type:text" json:"avatar_url"`
	PasswordHash      string           `gorm:"type:varchar(255)" json:"-"`
	Role              Role             `gorm:"type:varchar(20);not null;default:'donor'" json:"role"`
	KYCStatus         KYCStatus        `gorm:"type:varchar(20);not null;default:'pending'" json:"kyc_status"`
	KYCDocumentURL    *string          `gorm:"type:text" json:"kyc_document_url"`
	KYCDocumentType   *KYCDocumentType `gorm:"type:varchar(20)" json:"kyc_document_type"`
	KYCRejectedReason *string          `gorm:"type:text" json:"kyc_rejected_reason"`
	TOTPSecret        *string          `gorm:"type:varchar(64)" json:"-"`
	TwoFactorEnabled  bool             `gorm:"default:false" json:"two_factor_enabled"`
	LastLoginAt       *time.Time       `json:"last_login_at"`
	CreatedAt         time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when one was not provided
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanCreateCampaign reports whether the user may create campaigns:
// a verified creator, or an admin
func (u *User) CanCreateCampaign() bool {
	return (u.Role == RoleCreator || u.Role == RoleAdmin) && u.KYCStatus == KYCStatusVerified
}

// CanManageWithdrawalAccounts reports whether the user may manage payout
// accounts. Creators and guarantors unlock this once KYC-verified.
func (u *User) CanManageWithdrawalAccounts() bool {
	return (u.Role == RoleCreator || u.Role == RoleGuarantor || u.Role == RoleAdmin) && u.KYCStatus == KYCStatusVerified
}

// KYCStatusHistory tracks KYC status changes for the audit trail
type KYCStatusHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"-"`
	PreviousStatus KYCStatus `gorm:"type:varchar(20);not null" json:"previous_status"`
	NewStatus      KYCStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	ChangedBy      uuid.UUID `gorm:"type:uuid" json:"changed_by"`
	Notes          *string   `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate assigns a UUID when one was not provided
func (h *KYCStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
