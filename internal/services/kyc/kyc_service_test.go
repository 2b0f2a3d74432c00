package kyc

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
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.KYCStatusHistory{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	user := models.User{
		Email:     uuid.NewString() + "@example.com",
		Role:      role,
		KYCStatus: models.KYCStatusPending,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestSubmitAndApprove(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	user := createUser(t, db, models.RoleCreator)
	admin := createUser(t, db, models.RoleAdmin)

	submitted, err := svc.Submit(user.ID, "https://cdn.example.com/docs/cedula.jpg", models.KYCDocumentCedula)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusPending, submitted.KYCStatus)
	require.NotNil(t, submitted.KYCDocumentURL)
	require.NotNil(t, submitted.KYCDocumentType)
	assert.Equal(t, models.KYCDocumentCedula, *submitted.KYCDocumentType)

	verified, err := svc.Approve(user.ID, admin.ID, "document legible")
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusVerified, verified.KYCStatus)
	assert.True(t, verified.CanCreateCampaign())

	history, err := svc.History(user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.KYCStatusPending, history[0].PreviousStatus)
	assert.Equal(t, models.KYCStatusVerified, history[0].NewStatus)
	assert.Equal(t, admin.ID, history[0].ChangedBy)
}

func TestSubmitValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	user := createUser(t, db, models.RoleCreator)

	_, err := svc.Submit(user.ID, "https://cdn.example.com/doc.jpg", "selfie")
	assert.ErrorIs(t, err, ErrInvalidDocumentType)

	_, err = svc.Submit(user.ID, "  ", models.KYCDocumentPassport)
	assert.Error(t, err)
}

func TestSubmitWhilePendingReview(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	user := createUser(t, db, models.RoleCreator)

	_, err := svc.Submit(user.ID, "https://cdn.example.com/doc.jpg", models.KYCDocumentCedula)
	require.NoError(t, err)

	_, err = svc.Submit(user.ID, "https://cdn.example.com/doc2.jpg", models.KYCDocumentPassport)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestVerifiedIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	user := createUser(t, db, models.RoleCreator)
	admin := createUser(t, db, models.RoleAdmin)

	_, err := svc.Submit(user.ID, "https://cdn.example.com/doc.jpg", models.KYCDocumentCedula)
	require.NoError(t, err)
	_, err = svc.Approve(user.ID, admin.ID, "")
	require.NoError(t, err)

	_, err = svc.Submit(user.ID, "https://cdn.example.com/doc2.jpg", models.KYCDocumentPassport)
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	_, err = svc.Reject(user.ID, admin.ID, "trying to demote", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectAndResubmitClearsReason(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	user := createUser(t, db, models.RoleCreator)
	admin := createUser(t, db, models.RoleAdmin)

	_, err := svc.Submit(user.ID, "https://cdn.example.com/doc.jpg", models.KYCDocumentCedula)
	require.NoError(t, err)

	_, err = svc.Reject(user.ID, admin.ID, "", "")
	assert.ErrorIs(t, err, ErrReasonRequired)

	rejected, err := svc.Reject(user.ID, admin.ID, "document is blurry", "asked for a clearer photo")
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusRejected, rejected.KYCStatus)
	require.NotNil(t, rejected.KYCRejectedReason)
	assert.Equal(t, "document is blurry", *rejected.KYCRejectedReason)

	resubmitted, err := svc.Submit(user.ID, "https://cdn.example.com/doc-v2.jpg", models.KYCDocumentCedula)
	require.NoError(t, err)
	assert.Equal(t, models.KYCStatusPending, resubmitted.KYCStatus)
	assert.Nil(t, resubmitted.KYCRejectedReason)
	require.NotNil(t, resubmitted.KYCDocumentURL)
	assert.Equal(t, "https://cdn.example.com/doc-v2.jpg", *resubmitted.KYCDocumentURL)

	history, err := svc.History(user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestListPendingOnlyIncludesSubmissions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	// Fresh signup without a document: pending but nothing to review
	createUser(t, db, models.RoleCreator)

	withDoc := createUser(t, db, models.RoleCreator)
	_, err := svc.Submit(withDoc.ID, "https://cdn.example.com/doc.jpg", models.KYCDocumentLicense)
	require.NoError(t, err)

	users, total, err := svc.ListPending(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, withDoc.ID, users[0].ID)
}
