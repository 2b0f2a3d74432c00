package campaign

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/causafund/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.CampaignUpdate{},
	))
	return db
}

func createVerifiedCreator(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Email:     uuid.NewString() + "@example.com",
		Role:      models.RoleCreator,
		KYCStatus: models.KYCStatusVerified,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

var longStory = "Mi hermana necesita un tratamiento urgente y no podemos cubrir los costos. " +
	"Cada aporte nos acerca a la meta y toda ayuda cuenta para su recuperacion."

func TestCreateCampaignRequiresVerifiedCreator(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	input := CreateInput{Title: "Ayuda medica", Story: longStory, GoalAmountUSD: 500}

	cases := []struct {
		name string
		role models.Role
		kyc  models.KYCStatus
		ok   bool
	}{
		{"verified creator", models.RoleCreator, models.KYCStatusVerified, true},
		{"pending creator", models.RoleCreator, models.KYCStatusPending, false},
		{"rejected creator", models.RoleCreator, models.KYCStatusRejected, false},
		{"verified donor", models.RoleDonor, models.KYCStatusVerified, false},
		{"admin", models.RoleAdmin, models.KYCStatusVerified, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := models.User{
				Email:     uuid.NewString() + "@example.com",
				Role:      tc.role,
				KYCStatus: tc.kyc,
			}
			require.NoError(t, db.Create(&user).Error)

			_, err := svc.Create(&user, input)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotVerifiedCreator)
			}
		})
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	creator := createVerifiedCreator(t, db)

	_, err := svc.Create(creator, CreateInput{Title: "", Story: longStory, GoalAmountUSD: 100})
	assert.Error(t, err)

	_, err = svc.Create(creator, CreateInput{Title: "Ayuda", Story: longStory, GoalAmountUSD: 5})
	assert.Error(t, err)

	_, err = svc.Create(creator, CreateInput{Title: "Ayuda", Story: "too short", GoalAmountUSD: 100})
	assert.Error(t, err)

	_, err = svc.Create(creator, CreateInput{Title: "Ayuda", Story: longStory, GoalAmountUSD: 100, UrgencyLevel: "extreme"})
	assert.Error(t, err)
}

func TestCreateCampaignDraftAndSubmit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	creator := createVerifiedCreator(t, db)

	draft, err := svc.Create(creator, CreateInput{Title: "Ayuda medica", Story: longStory, GoalAmountUSD: 500})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusDraft, draft.Status)
	assert.Equal(t, models.UrgencyMedium, draft.UrgencyLevel)
	assert.Equal(t, "ayuda-medica", draft.Slug)

	submitted, err := svc.Create(creator, CreateInput{
		Title: "Ayuda medica", Story: longStory, GoalAmountUSD: 500, Submit: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPendingReview, submitted.Status)
	assert.Equal(t, "ayuda-medica-2", submitted.Slug)
}

func TestCampaignReviewLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	creator := createVerifiedCreator(t, db)

	campaign, err := svc.Create(creator, CreateInput{Title: "Techo nuevo", Story: longStory, GoalAmountUSD: 800})
	require.NoError(t, err)

	// A draft cannot be approved directly
	_, err = svc.Approve(campaign.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.SubmitForReview(campaign.ID, creator.ID)
	require.NoError(t, err)

	rejected, err := svc.Reject(campaign.ID, "story needs supporting documents")
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusDraft, rejected.Status)

	var fresh models.Campaign
	require.NoError(t, db.First(&fresh, "id = ?", campaign.ID).Error)
	require.NotNil(t, fresh.RejectedReason)
	assert.Equal(t, "story needs supporting documents", *fresh.RejectedReason)

	_, err = svc.SubmitForReview(campaign.ID, creator.ID)
	require.NoError(t, err)

	approved, err := svc.Approve(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, approved.Status)

	require.NoError(t, db.First(&fresh, "id = ?", campaign.ID).Error)
	assert.Nil(t, fresh.RejectedReason)

	_, err = svc.Pause(campaign.ID)
	require.NoError(t, err)
	_, err = svc.Resume(campaign.ID)
	require.NoError(t, err)
	closed, err := svc.Close(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusClosed, closed.Status)

	// Closed is terminal
	_, err = svc.Resume(campaign.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectRequiresReason(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	creator := createVerifiedCreator(t, db)

	campaign, err := svc.Create(creator, CreateInput{
		Title: "Ayuda", Story: longStory, GoalAmountUSD: 100, Submit: true,
	})
	require.NoError(t, err)

	_, err = svc.Reject(campaign.ID, "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestSubmitForReviewChecksOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	creator := createVerifiedCreator(t, db)
	other := createVerifiedCreator(t, db)

	campaign, err := svc.Create(creator, CreateInput{Title: "Ayuda", Story: longStory, GoalAmountUSD: 100})
	require.NoError(t, err)

	_, err = svc.SubmitForReview(campaign.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestListFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	creator := createVerifiedCreator(t, db)

	for _, c := range []struct {
		title    string
		category string
		urgency  models.UrgencyLevel
		submit   bool
	}{
		{"Salud urgente", "salud", models.UrgencyCritical, true},
		{"Educacion rural", "educacion", models.UrgencyLow, true},
		{"Borrador", "salud", models.UrgencyLow, false},
	} {
		campaign, err := svc.Create(creator, CreateInput{
			Title: c.title, Category: c.category, Story: longStory,
			GoalAmountUSD: 100, UrgencyLevel: c.urgency, Submit: c.submit,
		})
		require.NoError(t, err)
		if c.submit {
			_, err = svc.Approve(campaign.ID)
			require.NoError(t, err)
		}
	}

	active, total, err := svc.List(ListFilter{Status: models.CampaignStatusActive})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, active, 2)

	salud, total, err := svc.List(ListFilter{Status: models.CampaignStatusActive, Category: "salud"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, salud, 1)
	assert.Equal(t, "Salud urgente", salud[0].Title)

	critical, _, err := svc.List(ListFilter{Urgency: models.UrgencyCritical})
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "Salud urgente", critical[0].Title)
}

func TestCampaignUpdates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	creator := createVerifiedCreator(t, db)
	other := createVerifiedCreator(t, db)

	campaign, err := svc.Create(creator, CreateInput{Title: "Ayuda", Story: longStory, GoalAmountUSD: 100})
	require.NoError(t, err)

	_, err = svc.CreateUpdate(campaign.ID, other.ID, "Avance", "No es mi campaña")
	assert.ErrorIs(t, err, ErrNotOwner)

	update, err := svc.CreateUpdate(campaign.ID, creator.ID, "Avance", "Compramos los primeros medicamentos")
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, update.CampaignID)

	updates, err := svc.ListUpdates(campaign.ID)
	require.NoError(t, err)
	assert.Len(t, updates, 1)
}
