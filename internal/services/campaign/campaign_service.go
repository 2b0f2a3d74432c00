package campaign

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/models"
)

var (
	// ErrNotVerifiedCreator is returned when a user without verified
	// creator privileges tries to create a campaign
	ErrNotVerifiedCreator = errors.New("campaign creation requires a KYC-verified creator")
	// ErrInvalidTransition is returned for a status change not allowed
	// by the campaign lifecycle
	ErrInvalidTransition = errors.New("invalid campaign status transition")
	// ErrNotOwner is returned when a creator operates on someone else's campaign
	ErrNotOwner = errors.New("campaign does not belong to this creator")
	// ErrReasonRequired is returned when a rejection is missing its reason
	ErrReasonRequired = errors.New("rejection reason is required")
)

// MinGoalUSD is the smallest allowed campaign goal
const MinGoalUSD = 10

// MinStoryLength is the minimum number of characters for a campaign story
const MinStoryLength = 100

// Service handles campaign lifecycle operations
type Service struct {
	db *gorm.DB
}

// NewService creates a new campaign service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput holds the fields accepted when creating a campaign
type CreateInput struct {
	Title         string
	Category      string
	Story         string
	ImageURL      *string
	Location      *string
	GoalAmountUSD float64
	UrgencyLevel  models.UrgencyLevel
	// Submit sends the campaign straight to review, as the creation
	// form does. When false the campaign stays in draft.
	Submit bool
}

// Create creates a campaign for a verified creator
func (s *Service) Create(creator *models.User, input CreateInput) (*models.Campaign, error) {
	if !creator.CanCreateCampaign() {
		return nil, ErrNotVerifiedCreator
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("title is required")
	}
	if input.GoalAmountUSD < MinGoalUSD {
		return nil, fmt.Errorf("goal amount must be at least %d USD", MinGoalUSD)
	}
	if len(strings.TrimSpace(input.Story)) < MinStoryLength {
		return nil, fmt.Errorf("story must be at least %d characters", MinStoryLength)
	}
	if input.UrgencyLevel == "" {
		input.UrgencyLevel = models.UrgencyMedium
	}
	if !models.ValidUrgencyLevel(input.UrgencyLevel) {
		return nil, errors.New("invalid urgency level")
	}

	status := models.CampaignStatusDraft
	if input.Submit {
		status = models.CampaignStatusPendingReview
	}

	campaign := models.Campaign{
		CreatorID:     creator.ID,
		Title:         input.Title,
		Slug:          s.uniqueSlug(input.Title),
		Category:      input.Category,
		Story:         input.Story,
		ImageURL:      input.ImageURL,
		Location:      input.Location,
		GoalAmountUSD: input.GoalAmountUSD,
		UrgencyLevel:  input.UrgencyLevel,
		Status:        status,
	}

	if err := s.db.Create(&campaign).Error; err != nil {
		return nil, fmt.Errorf("error creating campaign: %w", err)
	}

	return &campaign, nil
}

// uniqueSlug builds a URL slug from the title, suffixing on collision
func (s *Service) uniqueSlug(title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		s.db.Model(&models.Campaign{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Get returns a campaign by ID
func (s *Service) Get(id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetBySlug returns a campaign by its slug
func (s *Service) GetBySlug(slugStr string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.First(&campaign, "slug = ?", slugStr).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ListFilter holds the public campaign list filters
type ListFilter struct {
	Status   models.CampaignStatus
	Category string
	Urgency  models.UrgencyLevel
	Page     int
	PageSize int
}

// List returns campaigns matching the filter with pagination
func (s *Service) List(filter ListFilter) ([]models.Campaign, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := s.db.Model(&models.Campaign{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Urgency != "" {
		query = query.Where("urgency_level = ?", filter.Urgency)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting campaigns: %w", err)
	}

	var campaigns []models.Campaign
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("created_at desc").Offset(offset).Limit(filter.PageSize).Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding campaigns: %w", err)
	}

	return campaigns, total, nil
}

// ListByCreator returns all campaigns owned by a creator
func (s *Service) ListByCreator(creatorID uuid.UUID) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := s.db.Where("creator_id = ?", creatorID).Order("created_at desc").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("error finding campaigns: %w", err)
	}
	return campaigns, nil
}

// transition applies a validated status change to a campaign
func (s *Service) transition(id uuid.UUID, next models.CampaignStatus, updates map[string]interface{}) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if !campaign.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, campaign.Status, next)
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = next

	if err := s.db.Model(&campaign).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error updating campaign: %w", err)
	}

	return &campaign, nil
}

// SubmitForReview moves a draft campaign into the admin review queue
func (s *Service) SubmitForReview(id, creatorID uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if campaign.CreatorID != creatorID {
		return nil, ErrNotOwner
	}
	return s.transition(id, models.CampaignStatusPendingReview, nil)
}

// Approve activates a campaign under review. Admin only; enforced at the
// route layer.
func (s *Service) Approve(id uuid.UUID) (*models.Campaign, error) {
	return s.transition(id, models.CampaignStatusActive, map[string]interface{}{
		"rejected_reason": nil,
	})
}

// Reject returns a campaign under review to draft, recording the reason
func (s *Service) Reject(id uuid.UUID, reason string) (*models.Campaign, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	return s.transition(id, models.CampaignStatusDraft, map[string]interface{}{
		"rejected_reason": reason,
	})
}

// Pause pauses an active campaign
func (s *Service) Pause(id uuid.UUID) (*models.Campaign, error) {
	return s.transition(id, models.CampaignStatusPaused, nil)
}

// Resume reactivates a paused campaign
func (s *Service) Resume(id uuid.UUID) (*models.Campaign, error) {
	return s.transition(id, models.CampaignStatusActive, nil)
}

// Close closes a campaign permanently
func (s *Service) Close(id uuid.UUID) (*models.Campaign, error) {
	return s.transition(id, models.CampaignStatusClosed, nil)
}

// CreateUpdate posts a progress update on a campaign owned by creatorID
func (s *Service) CreateUpdate(campaignID, creatorID uuid.UUID, title, body string) (*models.CampaignUpdate, error) {
	var campaign models.Campaign
	if err := s.db.First(&campaign, "id = ?", campaignID).Error; err != nil {
		return nil, err
	}
	if campaign.CreatorID != creatorID {
		return nil, ErrNotOwner
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil, errors.New("update title and body are required")
	}

	update := models.CampaignUpdate{
		CampaignID: campaignID,
		Title:      title,
		Body:       body,
	}
	if err := s.db.Create(&update).Error; err != nil {
		return nil, fmt.Errorf("error creating campaign update: %w", err)
	}
	return &update, nil
}

// ListUpdates returns a campaign's progress updates, newest first
func (s *Service) ListUpdates(campaignID uuid.UUID) ([]models.CampaignUpdate, error) {
	var updates []models.CampaignUpdate
	if err := s.db.Where("campaign_id = ?", campaignID).Order("created_at desc").Find(&updates).Error; err != nil {
		return nil, fmt.Errorf("error finding campaign updates: %w", err)
	}
	return updates, nil
}
