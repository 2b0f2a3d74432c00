package withdrawal

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/models"
)

var (
	// ErrNotAllowed is returned when the user has not unlocked payout
	// account management (verified creator/guarantor only)
	ErrNotAllowed = errors.New("withdrawal accounts require a verified creator or guarantor")
	// ErrInvalidAccountType is returned for unknown account types
	ErrInvalidAccountType = errors.New("invalid withdrawal account type")
	// ErrMissingDetails is returned when required detail fields for the
	// account type are absent
	ErrMissingDetails = errors.New("missing required account details")
	// ErrNotOwner is returned when operating on another user's account
	ErrNotOwner = errors.New("withdrawal account does not belong to this user")
)

// requiredDetails lists the detail fields each account type must carry,
// mirroring the payout form
var requiredDetails = map[models.WithdrawalAccountType][]string{
	models.WithdrawalAccountBankBs:    {"bank_name", "account_number", "id_number"},
	models.WithdrawalAccountPagoMovil: {"bank_name", "phone", "id_number"},
	models.WithdrawalAccountZelle:     {"email", "holder_name"},
	models.WithdrawalAccountPayPal:    {"email"},
	models.WithdrawalAccountCrypto:    {"network", "address"},
}

// Service handles payout account management for creators
type Service struct {
	db *gorm.DB
}

// NewService creates a new withdrawal account service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns a user's withdrawal accounts, primary first
func (s *Service) List(userID uuid.UUID) ([]models.WithdrawalAccount, error) {
	var accounts []models.WithdrawalAccount
	if err := s.db.Where("user_id = ?", userID).
		Order("is_primary desc, created_at asc").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("error finding withdrawal accounts: %w", err)
	}
	return accounts, nil
}

// Create adds a payout account. The user's first account becomes primary;
// accounts start unverified.
func (s *Service) Create(user *models.User, accountType models.WithdrawalAccountType, details models.JSON) (*models.WithdrawalAccount, error) {
	if !user.CanManageWithdrawalAccounts() {
		return nil, ErrNotAllowed
	}
	if !models.ValidWithdrawalAccountType(accountType) {
		return nil, ErrInvalidAccountType
	}
	for _, field := range requiredDetails[accountType] {
		v, ok := details[field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingDetails, field)
		}
		if str, isStr := v.(string); isStr && str == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingDetails, field)
		}
	}

	account := models.WithdrawalAccount{
		UserID:      user.ID,
		AccountType: accountType,
		Details:     details,
		Verified:    false,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WithdrawalAccount{}).
			Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("error counting accounts: %w", err)
		}
		account.IsPrimary = count == 0

		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("error creating withdrawal account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// SetPrimary makes the given account the user's primary payout destination,
// clearing any other primary in the same transaction so at most one exists
func (s *Service) SetPrimary(userID, accountID uuid.UUID) (*models.WithdrawalAccount, error) {
	var account models.WithdrawalAccount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
			return fmt.Errorf("error finding withdrawal account: %w", err)
		}
		if account.UserID != userID {
			return ErrNotOwner
		}

		if err := tx.Model(&models.WithdrawalAccount{}).
			Where("user_id = ? AND is_primary = ?", userID, true).
			Update("is_primary", false).Error; err != nil {
			return fmt.Errorf("error clearing primary flag: %w", err)
		}

		if err := tx.Model(&account).Update("is_primary", true).Error; err != nil {
			return fmt.Errorf("error setting primary flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// Delete removes a payout account. If the primary account is deleted the
// oldest remaining account becomes primary.
func (s *Service) Delete(userID, accountID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var account models.WithdrawalAccount
		if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
			return fmt.Errorf("error finding withdrawal account: %w", err)
		}
		if account.UserID != userID {
			return ErrNotOwner
		}

		if err := tx.Delete(&account).Error; err != nil {
			return fmt.Errorf("error deleting withdrawal account: %w", err)
		}

		if account.IsPrimary {
			var next models.WithdrawalAccount
			err := tx.Where("user_id = ?", userID).Order("created_at asc").First(&next).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return fmt.Errorf("error finding next account: %w", err)
			}
			if err := tx.Model(&next).Update("is_primary", true).Error; err != nil {
				return fmt.Errorf("error promoting account: %w", err)
			}
		}
		return nil
	})
}
