package donation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/utils"
)

var (
	// ErrCampaignNotAcceptingDonations is returned when the campaign is
	// not active
	ErrCampaignNotAcceptingDonations = errors.New("campaign is not accepting donations")
	// ErrInvalidAmount is returned for amounts below the minimum
	ErrInvalidAmount = errors.New("donation amount must be at least 1 USD")
	// ErrInvalidPaymentMethod is returned for unknown payment methods
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrReferenceRequired is returned when a manual payment is missing
	// its transaction reference
	ErrReferenceRequired = errors.New("transaction reference is required for manual payments")
	// ErrInvalidCryptoReference is returned when a crypto reference is
	// neither a transaction hash nor an address
	ErrInvalidCryptoReference = errors.New("crypto reference must be a transaction hash or address")
	// ErrAlreadyReviewed is returned when a manual payment has already
	// been approved or rejected. Approvals are not idempotent retries: a
	// second approval must never credit the campaign again.
	ErrAlreadyReviewed = errors.New("manual payment has already been reviewed")
	// ErrAlreadySettled is returned when a provider confirmation arrives
	// for a donation that is no longer pending
	ErrAlreadySettled = errors.New("donation has already been settled")
	// ErrNotManualPayment is returned when settling a provider donation
	// through the manual path or vice versa
	ErrNotManualPayment = errors.New("donation is not a manual payment")
)

// MinAmountUSD is the smallest accepted donation
const MinAmountUSD = 1

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// RateSource provides the current USD display rate for VEF amounts
type RateSource interface {
	CurrentRate() float64
}

// Service handles donation creation and settlement
type Service struct {
	db    *gorm.DB
	rates RateSource
}

// NewService creates a new donation service
func NewService(db *gorm.DB, rates RateSource) *Service {
	return &Service{db: db, rates: rates}
}

// CreateInput holds the checkout fields for a new donation
type CreateInput struct {
	CampaignID    uuid.UUID
	DonorID       *uuid.UUID
	AmountUSD     float64
	PaymentMethod models.PaymentMethod
	Anonymous     bool
	DonorEmail    string
	// ManualReference is the donor-reported transaction reference for
	// zelle/transfer/crypto payments
	ManualReference string
	// ManualProofNote is free-text proof supplied by the donor
	ManualProofNote string
}

// Create records a donation. Manual methods (zelle, transfer, crypto) get a
// linked ManualPayment row created in the same transaction; provider methods
// (card, paypal, pagomovil) stay pending until the provider webhook settles
// them.
func (s *Service) Create(input CreateInput) (*models.Donation, error) {
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if input.AmountUSD < MinAmountUSD {
		return nil, ErrInvalidAmount
	}

	var campaign models.Campaign
	if err := s.db.First(&campaign, "id = ?", input.CampaignID).Error; err != nil {
		return nil, fmt.Errorf("error finding campaign: %w", err)
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, ErrCampaignNotAcceptingDonations
	}

	if input.PaymentMethod.Manual() {
		if strings.TrimSpace(input.ManualReference) == "" {
			return nil, ErrReferenceRequired
		}
		if input.PaymentMethod == models.PaymentMethodCrypto && !validCryptoReference(input.ManualReference) {
			return nil, ErrInvalidCryptoReference
		}
	}

	donation := models.Donation{
		CampaignID:    input.CampaignID,
		AmountUSD:     input.AmountUSD,
		AmountVEF:     input.AmountUSD * s.rates.CurrentRate(),
		PaymentMethod: input.PaymentMethod,
		Status:        models.DonationStatusPending,
		Anonymous:     input.Anonymous,
		Reference:     utils.GenerateReference("DON"),
	}

	if !input.Anonymous {
		donation.DonorID = input.DonorID
		if input.DonorEmail != "" {
			email := input.DonorEmail
			name := strings.Split(input.DonorEmail, "@")[0]
			donation.DonorEmail = &email
			donation.DonorName = &name
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&donation).Error; err != nil {
			return fmt.Errorf("error creating donation: %w", err)
		}

		if donation.PaymentMethod.Manual() {
			manual := models.ManualPayment{
				DonationID:           donation.ID,
				PaymentType:          donation.PaymentMethod,
				TransactionReference: input.ManualReference,
				Status:               models.ManualPaymentPendingApproval,
			}
			if input.ManualProofNote != "" {
				note := input.ManualProofNote
				manual.ProofNote = &note
			}
			if err := tx.Create(&manual).Error; err != nil {
				return fmt.Errorf("error creating manual payment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &donation, nil
}

// validCryptoReference accepts an EVM transaction hash or address
func validCryptoReference(ref string) bool {
	return txHashPattern.MatchString(ref) || ethcommon.IsHexAddress(ref)
}

// ApproveManualPayment settles an admin-approved manual payment. The three
// row updates (manual payment, donation, campaign total) happen in one
// transaction, with a compare-and-set guard on pending_approval so that
// concurrent or repeated approvals can never double-credit the campaign.
func (s *Service) ApproveManualPayment(manualID, adminID uuid.UUID, note string) (*models.ManualPayment, error) {
	var manual models.ManualPayment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&manual, "id = ?", manualID).Error; err != nil {
			return fmt.Errorf("error finding manual payment: %w", err)
		}

		var donation models.Donation
		if err := tx.First(&donation, "id = ?", manual.DonationID).Error; err != nil {
			return fmt.Errorf("error finding donation: %w", err)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      models.ManualPaymentApproved,
			"reviewed_by": adminID,
			"reviewed_at": now,
		}
		if note != "" {
			updates["review_note"] = note
		}

		result := tx.Model(&models.ManualPayment{}).
			Where("id = ? AND status = ?", manualID, models.ManualPaymentPendingApproval).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("error updating manual payment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}

		if err := tx.Model(&models.Donation{}).
			Where("id = ?", donation.ID).
			Update("status", models.DonationStatusCompleted).Error; err != nil {
			return fmt.Errorf("error updating donation: %w", err)
		}

		if err := tx.Model(&models.Campaign{}).
			Where("id = ?", donation.CampaignID).
			Update("current_amount_usd", gorm.Expr("current_amount_usd + ?", donation.AmountUSD)).Error; err != nil {
			return fmt.Errorf("error crediting campaign: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&manual, "id = ?", manualID).Error; err != nil {
		return nil, err
	}
	return &manual, nil
}

// RejectManualPayment marks a manual payment and its donation as rejected.
// The campaign total is never touched on rejection.
func (s *Service) RejectManualPayment(manualID, adminID uuid.UUID, note string) (*models.ManualPayment, error) {
	var manual models.ManualPayment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&manual, "id = ?", manualID).Error; err != nil {
			return fmt.Errorf("error finding manual payment: %w", err)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":      models.ManualPaymentRejected,
			"reviewed_by": adminID,
			"reviewed_at": now,
		}
		if note != "" {
			updates["review_note"] = note
		}

		result := tx.Model(&models.ManualPayment{}).
			Where("id = ? AND status = ?", manualID, models.ManualPaymentPendingApproval).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("error updating manual payment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}

		if err := tx.Model(&models.Donation{}).
			Where("id = ?", manual.DonationID).
			Update("status", models.DonationStatusRejected).Error; err != nil {
			return fmt.Errorf("error updating donation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&manual, "id = ?", manualID).Error; err != nil {
		return nil, err
	}
	return &manual, nil
}

// SettleProviderPayment settles a card/paypal/pagomovil donation after the
// payment provider confirms or fails it. Uses the same compare-and-set
// guard as manual approval so repeated webhook deliveries cannot
// double-credit.
func (s *Service) SettleProviderPayment(reference string, succeeded bool, providerRef string) (*models.Donation, error) {
	var donation models.Donation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&donation, "reference = ?", reference).Error; err != nil {
			return fmt.Errorf("error finding donation: %w", err)
		}
		if donation.PaymentMethod.Manual() {
			return ErrNotManualPayment
		}

		next := models.DonationStatusCompleted
		if !succeeded {
			next = models.DonationStatusRejected
		}

		updates := map[string]interface{}{"status": next}
		if providerRef != "" {
			updates["provider_ref"] = providerRef
		}

		result := tx.Model(&models.Donation{}).
			Where("id = ? AND status = ?", donation.ID, models.DonationStatusPending).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("error updating donation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		if succeeded {
			if err := tx.Model(&models.Campaign{}).
				Where("id = ?", donation.CampaignID).
				Update("current_amount_usd", gorm.Expr("current_amount_usd + ?", donation.AmountUSD)).Error; err != nil {
				return fmt.Errorf("error crediting campaign: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&donation, "id = ?", donation.ID).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListPendingManualPayments returns manual payments awaiting review,
// oldest first, with their donations preloaded
func (s *Service) ListPendingManualPayments(page, pageSize int) ([]models.ManualPayment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.db.Model(&models.ManualPayment{}).
		Where("status = ?", models.ManualPaymentPendingApproval).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting manual payments: %w", err)
	}

	var payments []models.ManualPayment
	offset := (page - 1) * pageSize
	if err := s.db.Preload("Donation").
		Where("status = ?", models.ManualPaymentPendingApproval).
		Order("created_at asc").Offset(offset).Limit(pageSize).
		Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding manual payments: %w", err)
	}

	return payments, total, nil
}

// ListByCampaign returns a campaign's donations, newest first. Donor
// identity on anonymous donations is never exposed here because it is
// never stored on them.
func (s *Service) ListByCampaign(campaignID uuid.UUID) ([]models.Donation, error) {
	var donations []models.Donation
	if err := s.db.Where("campaign_id = ?", campaignID).Order("created_at desc").Find(&donations).Error; err != nil {
		return nil, fmt.Errorf("error finding donations: %w", err)
	}
	return donations, nil
}

// ListByDonor returns a donor's donations, newest first
func (s *Service) ListByDonor(donorID uuid.UUID) ([]models.Donation, error) {
	var donations []models.Donation
	if err := s.db.Where("donor_id = ?", donorID).Order("created_at desc").Find(&donations).Error; err != nil {
		return nil, fmt.Errorf("error finding donations: %w", err)
	}
	return donations, nil
}

// CompletedTotal computes the sum of a campaign's completed donations.
// Used to reconcile the incrementally maintained campaign total.
func (s *Service) CompletedTotal(campaignID uuid.UUID) (float64, error) {
	var total float64
	err := s.db.Model(&models.Donation{}).
		Where("campaign_id = ? AND status = ?", campaignID, models.DonationStatusCompleted).
		Select("COALESCE(SUM(amount_usd), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("error summing donations: %w", err)
	}
	return total, nil
}
