package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus represents the moderation and funding state of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft         CampaignStatus = "draft"
	CampaignStatusPendingReview CampaignStatus = "pending_review"
	CampaignStatusActive        CampaignStatus = "active"
	CampaignStatusPaused        CampaignStatus = "paused"
	CampaignStatusClosed        CampaignStatus = "closed"
)

// CanTransitionTo reports whether a campaign status transition is allowed.
// A campaign only reaches active through admin review from pending_review;
// a rejected review returns it to draft. Paused and active are mutually
// reachable and closed is terminal.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	switch s {
	case CampaignStatusDraft:
		return next == CampaignStatusPendingReview
	case CampaignStatusPendingReview:
		return next == CampaignStatusActive || next == CampaignStatusDraft
	case CampaignStatusActive:
		return next == CampaignStatusPaused || next == CampaignStatusClosed
	case CampaignStatusPaused:
		return next == CampaignStatusActive || next == CampaignStatusClosed
	case CampaignStatusClosed:
		return false
	}
	return false
}

// UrgencyLevel represents how urgent a campaign's cause is
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// ValidUrgencyLevel reports whether u is a known urgency level
func ValidUrgencyLevel(u UrgencyLevel) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Campaign represents a fundraising campaign
type Campaign struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatorID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"creator_id"`
	Creator          User           `gorm:"foreignKey:CreatorID" json:"-"`
	Title            string         `gorm:"type:varchar(255);not null" json:"title"`
	Slug             string         `gorm:"type:varchar(255);uniqueIndex" json:"slug"`
	Category         string         `gorm:"type:varchar(50)" json:"category"`
	Story            string         `gorm:"type:text" json:"story"`
	ImageURL         *string        `gorm:"type:text" json:"image_url"`
	Location         *string        `gorm:"type:varchar(255)" json:"location"`
	GoalAmountUSD    float64        `gorm:"type:decimal(12,2);not null" json:"goal_amount_usd"`
	CurrentAmountUSD float64        `gorm:"type:decimal(12,2);not null;default:0" json:"current_amount_usd"`
	UrgencyLevel     UrgencyLevel   `gorm:"type:varchar(20);not null;default:'medium'" json:"urgency_level"`
	Status           CampaignStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	RejectedReason   *string        `gorm:"type:text" json:"rejected_reason"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when one was not provided
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CampaignUpdate represents a progress update posted by the campaign creator
type CampaignUpdate struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CampaignID uuid.UUID `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign   Campaign  `gorm:"foreignKey:CampaignID" json:"-"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate assigns a UUID when one was not provided
func (u *CampaignUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
