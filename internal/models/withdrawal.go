package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalAccountType represents the payout channel of a withdrawal account
type WithdrawalAccountType string

const (
	WithdrawalAccountBankBs    WithdrawalAccountType = "bank_bs"
	WithdrawalAccountPagoMovil WithdrawalAccountType = "pagomovil"
	WithdrawalAccountZelle     WithdrawalAccountType = "zelle"
	WithdrawalAccountPayPal    WithdrawalAccountType = "paypal"
	WithdrawalAccountCrypto    WithdrawalAccountType = "crypto"
)

// ValidWithdrawalAccountType reports whether t is a known account type
func ValidWithdrawalAccountType(t WithdrawalAccountType) bool {
	switch t {
	case WithdrawalAccountBankBs, WithdrawalAccountPagoMovil,
		WithdrawalAccountZelle, WithdrawalAccountPayPal, WithdrawalAccountCrypto:
		return true
	}
	return false
}

// WithdrawalAccount holds a creator's payout destination. At most one
// account per user is primary; the first account created becomes primary.
type WithdrawalAccount struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User                  `gorm:"foreignKey:UserID" json:"-"`
	AccountType WithdrawalAccountType `gorm:"type:varchar(20);not null" json:"account_type"`
	Details     JSON                  `gorm:"type:jsonb" json:"details"`
	Verified    bool                  `gorm:"default:false" json:"verified"`
	IsPrimary   bool                  `gorm:"default:false" json:"is_primary"`
	CreatedAt   time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt        `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when one was not provided
func (a *WithdrawalAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
