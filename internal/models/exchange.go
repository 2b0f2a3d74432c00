package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExchangeRate holds a fetched USD exchange rate snapshot. Rates are used
// for display only; settlement accounting always operates in USD.
type ExchangeRate struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Currency  string    `gorm:"type:varchar(5);not null;index" json:"currency"`
	RateUSD   float64   `gorm:"type:decimal(16,4);not null" json:"rate_usd"`
	Source    string    `gorm:"type:varchar(50)" json:"source"`
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate assigns a UUID when one was not provided
func (r *ExchangeRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
