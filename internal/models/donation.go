package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethod represents how a donation is paid
type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodPayPal    PaymentMethod = "paypal"
	PaymentMethodPagoMovil PaymentMethod = "pagomovil"
	PaymentMethodZelle     PaymentMethod = "zelle"
	PaymentMethodTransfer  PaymentMethod = "transfer"
	PaymentMethodCrypto    PaymentMethod = "crypto"
)

// ValidPaymentMethod reports whether m is a known payment method
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPayPal, PaymentMethodPagoMovil,
		PaymentMethodZelle, PaymentMethodTransfer, PaymentMethodCrypto:
		return true
	}
	return false
}

// Manual reports whether the method settles out-of-band and requires an
// administrator to verify a manual payment record. Card, PayPal and Pago
// Móvil settle through a payment provider and never get a manual payment row.
func (m PaymentMethod) Manual() bool {
	switch m {
	case PaymentMethodZelle, PaymentMethodTransfer, PaymentMethodCrypto:
		return true
	}
	return false
}

// DonationStatus represents the settlement state of a donation
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusRejected  DonationStatus = "rejected"
)

// CanTransitionTo reports whether a donation status transition is allowed
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	switch s {
	case DonationStatusPending:
		return next == DonationStatusCompleted || next == DonationStatusRejected
	case DonationStatusCompleted, DonationStatusRejected:
		return false
	}
	return false
}

// Donation represents a contribution to a campaign. DonorID is nil for
// anonymous donations.
type Donation struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CampaignID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign      Campaign       `gorm:"foreignKey:CampaignID" json:"-"`
	DonorID       *uuid.UUID     `gorm:"type:uuid;index" json:"donor_id"`
	Donor         *User          `gorm:"foreignKey:DonorID" json:"-"`
	AmountUSD     float64        `gorm:"type:decimal(12,2);not null" json:"amount_usd"`
	AmountVEF     float64        `gorm:"type:decimal(16,2)" json:"amount_vef"`
	PaymentMethod PaymentMethod  `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        DonationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Anonymous     bool           `gorm:"default:false" json:"anonymous"`
	DonorEmail    *string        `gorm:"type:varchar(255)" json:"donor_email"`
	DonorName     *string        `gorm:"type:varchar(255)" json:"donor_name"`
	Reference     string         `gorm:"type:varchar(100);uniqueIndex" json:"reference"`
	ProviderRef   *string        `gorm:"type:varchar(255)" json:"provider_ref"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when one was not provided
func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// ManualPaymentStatus represents the review state of a manual payment
type ManualPaymentStatus string

const (
	ManualPaymentPendingApproval ManualPaymentStatus = "pending_approval"
	ManualPaymentApproved        ManualPaymentStatus = "approved"
	ManualPaymentRejected        ManualPaymentStatus = "rejected"
)

// CanTransitionTo reports whether a manual payment status transition is
// allowed. Approved and rejected are terminal: they are set once by an
// admin decision.
func (s ManualPaymentStatus) CanTransitionTo(next ManualPaymentStatus) bool {
	switch s {
	case ManualPaymentPendingApproval:
		return next == ManualPaymentApproved || next == ManualPaymentRejected
	case ManualPaymentApproved, ManualPaymentRejected:
		return false
	}
	return false
}

// ManualPayment is the out-of-band settlement record linked 1:1 to a
// donation paid via zelle, transfer or crypto
type ManualPayment struct {
	ID                   uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	DonationID           uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"donation_id"`
	Donation             Donation            `gorm:"foreignKey:DonationID" json:"-"`
	PaymentType          PaymentMethod       `gorm:"type:varchar(20);not null" json:"payment_type"`
	TransactionReference string              `gorm:"type:varchar(255);not null" json:"transaction_reference"`
	ProofNote            *string             `gorm:"type:text" json:"proof_note"`
	Status               ManualPaymentStatus `gorm:"type:varchar(20);not null;default:'pending_approval'" json:"status"`
	ReviewNote           *string             `gorm:"type:text" json:"review_note"`
	ReviewedBy           *uuid.UUID          `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt           *time.Time          `json:"reviewed_at"`
	CreatedAt            time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate assigns a UUID when one was not provided
func (m *ManualPayment) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
